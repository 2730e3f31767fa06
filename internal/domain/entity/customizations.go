package entity

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// Customization is a single option chosen for a line, e.g. sugar=less
type Customization struct {
	Key   string
	Value string
}

// Customizations is an ordered string mapping. On the wire and in storage it
// is a JSON object whose keys keep the order in which they were given.
type Customizations []Customization

// Get returns the value stored under key
func (c Customizations) Get(key string) (string, bool) {
	for _, kv := range c {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

// Set replaces the value of an existing key in place or appends a new pair
func (c *Customizations) Set(key, value string) {
	for i := range *c {
		if (*c)[i].Key == key {
			(*c)[i].Value = value
			return
		}
	}
	*c = append(*c, Customization{Key: key, Value: value})
}

func (c Customizations) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, kv := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(kv.Key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(kv.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (c *Customizations) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		*c = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("customizations must be a JSON object")
	}

	var out Customizations
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		if key == "" {
			return errors.New("customization keys must not be empty")
		}
		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("customization %q must be a string: %w", key, err)
		}
		out.Set(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*c = out
	return nil
}

func (c Customizations) Value() (driver.Value, error) {
	if len(c) == 0 {
		return nil, nil
	}
	data, err := c.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (c *Customizations) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*c = nil
		return nil
	case string:
		if v == "" {
			*c = nil
			return nil
		}
		return c.UnmarshalJSON([]byte(v))
	case []byte:
		if len(v) == 0 {
			*c = nil
			return nil
		}
		return c.UnmarshalJSON(v)
	}
	return fmt.Errorf("cannot scan %T into Customizations", value)
}
