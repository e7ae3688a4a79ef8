package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// JSON 通用 JSON 字段类型
type JSON json.RawMessage

// Value 用于数据库写入
func (j JSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return string(j), nil
}

// Scan 用于数据库读取
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		*j = append((*j)[0:0], v...)
		return nil
	case string:
		*j = JSON(v)
		return nil
	default:
		return fmt.Errorf("unsupported json scan type: %T", value)
	}
}

// MarshalJSON 输出原始 JSON
func (j JSON) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("null"), nil
	}
	return j, nil
}

// UnmarshalJSON 写入原始 JSON
func (j *JSON) UnmarshalJSON(b []byte) error {
	if j == nil {
		return errors.New("models.JSON: UnmarshalJSON on nil pointer")
	}
	*j = append((*j)[0:0], b...)
	return nil
}

// StringList 字符串列表字段（JSON 数组存储）
type StringList []string

// Value 用于数据库写入
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	payload, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(payload), nil
}

// Scan 用于数据库读取
func (l *StringList) Scan(value interface{}) error {
	return scanJSONList(value, (*[]string)(l))
}

// Contains 判断是否包含指定值
func (l StringList) Contains(target string) bool {
	for _, item := range l {
		if item == target {
			return true
		}
	}
	return false
}

// IntList 整数列表字段（JSON 数组存储）
type IntList []int

// Value 用于数据库写入
func (l IntList) Value() (driver.Value, error) {
	if l == nil {
		l = IntList{}
	}
	payload, err := json.Marshal([]int(l))
	if err != nil {
		return nil, err
	}
	return string(payload), nil
}

// Scan 用于数据库读取
func (l *IntList) Scan(value interface{}) error {
	return scanJSONList(value, (*[]int)(l))
}

// Contains 判断是否包含指定值
func (l IntList) Contains(target int) bool {
	for _, item := range l {
		if item == target {
			return true
		}
	}
	return false
}

// UintList 无符号整数列表字段（JSON 数组存储）
type UintList []uint

// Value 用于数据库写入
func (l UintList) Value() (driver.Value, error) {
	if l == nil {
		l = UintList{}
	}
	payload, err := json.Marshal([]uint(l))
	if err != nil {
		return nil, err
	}
	return string(payload), nil
}

// Scan 用于数据库读取
func (l *UintList) Scan(value interface{}) error {
	return scanJSONList(value, (*[]uint)(l))
}

// Contains 判断是否包含指定值
func (l UintList) Contains(target uint) bool {
	for _, item := range l {
		if item == target {
			return true
		}
	}
	return false
}

func scanJSONList[T any](value interface{}, dest *[]T) error {
	if value == nil {
		*dest = nil
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported json list scan type: %T", value)
	}
	if len(raw) == 0 {
		*dest = nil
		return nil
	}
	return json.Unmarshal(raw, dest)
}
