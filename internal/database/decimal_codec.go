package database

import (
	"fmt"
	"reflect"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsoncodec"
	"go.mongodb.org/mongo-driver/bson/bsonrw"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var decimalType = reflect.TypeOf(decimal.Decimal{})

// NewRegistry returns the default BSON registry extended so that
// decimal.Decimal is stored as Decimal128.
func NewRegistry() *bsoncodec.Registry {
	reg := bson.NewRegistry()
	reg.RegisterTypeEncoder(decimalType, bsoncodec.ValueEncoderFunc(encodeDecimal))
	reg.RegisterTypeDecoder(decimalType, bsoncodec.ValueDecoderFunc(decodeDecimal))
	return reg
}

func encodeDecimal(_ bsoncodec.EncodeContext, vw bsonrw.ValueWriter, val reflect.Value) error {
	if !val.IsValid() || val.Type() != decimalType {
		return bsoncodec.ValueEncoderError{Name: "decimalEncodeValue", Types: []reflect.Type{decimalType}, Received: val}
	}
	d128, err := primitive.ParseDecimal128(val.Interface().(decimal.Decimal).String())
	if err != nil {
		return fmt.Errorf("failed to encode decimal: %w", err)
	}
	return vw.WriteDecimal128(d128)
}

// decodeDecimal also accepts doubles, integers and strings so documents
// written by other tools still load.
func decodeDecimal(_ bsoncodec.DecodeContext, vr bsonrw.ValueReader, val reflect.Value) error {
	if !val.CanSet() || val.Type() != decimalType {
		return bsoncodec.ValueDecoderError{Name: "decimalDecodeValue", Types: []reflect.Type{decimalType}, Received: val}
	}

	var d decimal.Decimal
	switch vr.Type() {
	case bsontype.Decimal128:
		d128, err := vr.ReadDecimal128()
		if err != nil {
			return err
		}
		if d, err = decimal.NewFromString(d128.String()); err != nil {
			return fmt.Errorf("failed to decode decimal %s: %w", d128, err)
		}
	case bsontype.Double:
		f, err := vr.ReadDouble()
		if err != nil {
			return err
		}
		d = decimal.NewFromFloat(f)
	case bsontype.Int32:
		i, err := vr.ReadInt32()
		if err != nil {
			return err
		}
		d = decimal.NewFromInt32(i)
	case bsontype.Int64:
		i, err := vr.ReadInt64()
		if err != nil {
			return err
		}
		d = decimal.NewFromInt(i)
	case bsontype.String:
		s, err := vr.ReadString()
		if err != nil {
			return err
		}
		if d, err = decimal.NewFromString(s); err != nil {
			return fmt.Errorf("failed to decode decimal %q: %w", s, err)
		}
	case bsontype.Null:
		if err := vr.ReadNull(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("cannot decode %v into decimal.Decimal", vr.Type())
	}

	val.Set(reflect.ValueOf(d))
	return nil
}
