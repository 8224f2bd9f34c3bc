package model

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

// Fields the pipeline interprets; everything else on a DeviceRecord is
// passthrough data preserved for export.
const (
	FieldDeviceID      = "device_id"
	FieldLocationIP    = "locationIp"
	FieldProvince      = "province"
	FieldCity          = "city"
	FieldCountry       = "country"
	FieldLatitude      = "latitude"
	FieldLongitude     = "longitude"
	FieldRetailer      = "retailer"
	FieldServiceStatus = "cpeServiceStatus"
	FieldOnline        = "online"
	FieldSyncTime      = "syncTime"
	FieldConnectedTime = "connectedTime"
)

// DeviceRecord is one row of the fleet inventory. It preserves every
// field the API returned, in the order it arrived, so export does not
// need a fixed schema beyond the fields the pipeline inspects.
type DeviceRecord struct {
	keys   []string
	fields map[string]any
}

// NewDeviceRecord creates an empty device record.
func NewDeviceRecord() *DeviceRecord {
	return &DeviceRecord{fields: make(map[string]any)}
}

// Keys returns the field names in arrival order.
func (r *DeviceRecord) Keys() []string {
	return r.keys
}

// Get returns the raw value for a field.
func (r *DeviceRecord) Get(key string) (any, bool) {
	v, ok := r.fields[key]
	return v, ok
}

// Set stores a field value, appending the key on first sight so the
// column order stays stable.
func (r *DeviceRecord) Set(key string, v any) {
	if r.fields == nil {
		r.fields = make(map[string]any)
	}
	if _, exists := r.fields[key]; !exists {
		r.keys = append(r.keys, key)
	}
	r.fields[key] = v
}

// Has reports whether a field is present.
func (r *DeviceRecord) Has(key string) bool {
	_, ok := r.fields[key]
	return ok
}

// String returns a field coerced to its string form; missing or null
// fields yield "".
func (r *DeviceRecord) String(key string) string {
	v, ok := r.fields[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// Float returns a numeric field as float64.
func (r *DeviceRecord) Float(key string) (float64, bool) {
	v, ok := r.fields[key]
	if !ok || v == nil {
		return 0, false
	}
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Epoch returns a timestamp field (epoch seconds) as a time.Time.
// Malformed or missing values report false, never an error.
func (r *DeviceRecord) Epoch(key string) (time.Time, bool) {
	f, ok := r.Float(key)
	if !ok || f == 0 {
		return time.Time{}, false
	}
	sec := int64(f)
	nsec := int64((f - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec), true
}

// ID returns the device identifier, or "" when the record is invalid.
func (r *DeviceRecord) ID() string {
	return r.String(FieldDeviceID)
}

// LocationIP returns the device's reported IP address, if any.
func (r *DeviceRecord) LocationIP() string {
	return r.String(FieldLocationIP)
}

// Retailer returns the retailer bucket for the device, falling back to
// the NoRetailer sentinel when absent.
func (r *DeviceRecord) Retailer() string {
	if v, ok := r.fields[FieldRetailer]; ok && v != nil {
		if s, isStr := v.(string); !isStr || s != "" {
			return r.String(FieldRetailer)
		}
	}
	return NoRetailer
}

// Clone returns a copy sharing no state with the original.
func (r *DeviceRecord) Clone() *DeviceRecord {
	c := &DeviceRecord{
		keys:   append([]string(nil), r.keys...),
		fields: make(map[string]any, len(r.fields)),
	}
	for k, v := range r.fields {
		c.fields[k] = v
	}
	return c
}

// UnmarshalJSON decodes a JSON object preserving key order. Numbers are
// kept as json.Number so epoch timestamps survive intact.
func (r *DeviceRecord) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("device record: expected JSON object")
	}

	r.keys = nil
	r.fields = make(map[string]any)

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("device record: non-string key %v", keyTok)
		}
		val, err := decodeValue(dec)
		if err != nil {
			return err
		}
		r.Set(key, val)
	}

	_, err = dec.Token() // consume closing brace
	return err
}

// MarshalJSON encodes the record with its original field order.
func (r *DeviceRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(r.fields[key])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}

	switch delim {
	case '{':
		m := make(map[string]any)
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, fmt.Errorf("non-string key %v", keyTok)
			}
			val, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			m[key] = val
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return m, nil
	case '[':
		var a []any
		for dec.More() {
			val, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			a = append(a, val)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return a, nil
	default:
		return nil, fmt.Errorf("unexpected delimiter %v", delim)
	}
}
