package contract

import (
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/umbracle/ethgo"
	"github.com/umbracle/ethgo/abi"

	"github.com/streamgold/sgld-deployer/helper/hex"
)

// ConvertArguments turns parsed command line arguments into values the ABI encoder
// accepts for the given tuple type (usually a constructor or method input list)
func ConvertArguments(typ *abi.Type, args []interface{}) ([]interface{}, error) {
	elems := typ.TupleElems()
	if len(elems) != len(args) {
		return nil, fmt.Errorf("expected %d arguments but got %d", len(elems), len(args))
	}

	out := make([]interface{}, len(args))

	for i, elem := range elems {
		value, err := convertValue(elem.Elem, args[i])
		if err != nil {
			name := elem.Name
			if name == "" {
				name = strconv.Itoa(i)
			}

			return nil, fmt.Errorf("argument '%s' (%s): %w", name, elem.Elem.String(), err)
		}

		out[i] = value
	}

	return out, nil
}

func convertValue(typ *abi.Type, raw interface{}) (interface{}, error) {
	switch typ.Kind() {
	case abi.KindSlice, abi.KindArray:
		items, ok := raw.([]interface{})
		if !ok {
			return nil, fmt.Errorf("expected array, got %v", raw)
		}

		if typ.Kind() == abi.KindArray && len(items) != typ.Size() {
			return nil, fmt.Errorf("expected %d items, got %d", typ.Size(), len(items))
		}

		out := make([]interface{}, len(items))

		for i, item := range items {
			value, err := convertValue(typ.Elem(), item)
			if err != nil {
				return nil, fmt.Errorf("item %d: %w", i, err)
			}

			out[i] = value
		}

		return out, nil

	case abi.KindTuple:
		items, ok := raw.([]interface{})
		if !ok {
			return nil, fmt.Errorf("expected tuple, got %v", raw)
		}

		return ConvertArguments(typ, items)

	case abi.KindBool:
		switch v := raw.(type) {
		case bool:
			return v, nil
		case string:
			return strconv.ParseBool(v)
		}

	case abi.KindString:
		if v, ok := raw.(string); ok {
			return v, nil
		}

	case abi.KindAddress:
		if v, ok := raw.(string); ok {
			return ParseAddress(v)
		}

	case abi.KindUInt, abi.KindInt:
		if v, ok := raw.(string); ok {
			return parseNumber(v, typ.Kind() == abi.KindUInt)
		}

	case abi.KindBytes:
		if v, ok := raw.(string); ok {
			return hex.DecodeHex(v)
		}

	case abi.KindFixedBytes:
		if v, ok := raw.(string); ok {
			return fixedBytes(v, typ.Size())
		}
	}

	return nil, fmt.Errorf("cannot convert %v", raw)
}

const addressLength = 20

// ParseAddress parses a 0x prefixed 20 byte hex address
func ParseAddress(raw string) (ethgo.Address, error) {
	raw = strings.TrimSpace(raw)

	buf, err := hex.DecodeHex(raw)
	if err != nil || !strings.HasPrefix(raw, "0x") || len(buf) != addressLength {
		return ethgo.Address{}, fmt.Errorf("invalid address '%s'", raw)
	}

	var addr ethgo.Address
	copy(addr[:], buf)

	return addr, nil
}

func parseNumber(raw string, unsigned bool) (*big.Int, error) {
	raw = strings.TrimSpace(raw)

	var (
		n  *big.Int
		ok bool
	)

	if strings.HasPrefix(raw, "0x") {
		n, ok = new(big.Int).SetString(raw[2:], 16)
	} else {
		n, ok = new(big.Int).SetString(raw, 10)
	}

	if !ok {
		return nil, fmt.Errorf("invalid number '%s'", raw)
	}

	if unsigned && n.Sign() < 0 {
		return nil, fmt.Errorf("negative value '%s' for unsigned type", raw)
	}

	return n, nil
}

func fixedBytes(raw string, size int) (interface{}, error) {
	buf, err := hex.DecodeHex(raw)
	if err != nil {
		return nil, err
	}

	if len(buf) > size {
		return nil, fmt.Errorf("value has %d bytes, type holds %d", len(buf), size)
	}

	arr := reflect.New(reflect.ArrayOf(size, reflect.TypeOf(byte(0)))).Elem()
	reflect.Copy(arr, reflect.ValueOf(buf))

	return arr.Interface(), nil
}
