package config

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v2"
)

// Serializer 配置文件格式
type Serializer interface {
	Marshal(v interface{}) ([]byte, error)
	Unmarshal(data []byte, v interface{}) error
	GetFileExt() string // 默认扩展名，如 .yml
	GetName() string    // 格式名称，如 yaml
}

// extAliases 同一格式的其他常见扩展名
var extAliases = map[string]string{
	".yaml": ".yml",
	".cfg":  ".ini",
	".conf": ".ini",
}

// serializerFor 按扩展名在 formats 中选择格式，扩展名不区分大小写
func serializerFor(formats []Serializer, path string) (Serializer, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	if alias, ok := extAliases[ext]; ok {
		ext = alias
	}
	for _, f := range formats {
		if f.GetFileExt() == ext {
			return f, true
		}
	}
	return nil, false
}

type YAMLSerializer struct{}

func (*YAMLSerializer) Marshal(v interface{}) ([]byte, error)      { return yaml.Marshal(v) }
func (*YAMLSerializer) Unmarshal(data []byte, v interface{}) error { return yaml.Unmarshal(data, v) }
func (*YAMLSerializer) GetFileExt() string                         { return ".yml" }
func (*YAMLSerializer) GetName() string                            { return "yaml" }

type JSONSerializer struct{}

func (*JSONSerializer) Marshal(v interface{}) ([]byte, error)      { return json.MarshalIndent(v, "", "  ") }
func (*JSONSerializer) Unmarshal(data []byte, v interface{}) error { return json.Unmarshal(data, v) }
func (*JSONSerializer) GetFileExt() string                         { return ".json" }
func (*JSONSerializer) GetName() string                            { return "json" }

// INISerializer 嵌套结构体映射为同名分区；键名不区分大小写
type INISerializer struct{}

func (*INISerializer) Marshal(v interface{}) ([]byte, error) {
	f := ini.Empty()
	if err := f.ReflectFrom(v); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (*INISerializer) Unmarshal(data []byte, v interface{}) error {
	f, err := ini.InsensitiveLoad(data)
	if err != nil {
		return err
	}
	return f.MapTo(v)
}

func (*INISerializer) GetFileExt() string { return ".ini" }
func (*INISerializer) GetName() string    { return "ini" }
