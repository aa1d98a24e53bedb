package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// pathVars 默认路径模板可用的变量
func pathVars(appName string) map[string]string {
	execDir := "."
	if p, err := os.Executable(); err == nil {
		execDir = filepath.Dir(p)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return map[string]string{
		"AppName": appName,
		"ExecDir": execDir,
		"HomeDir": home,
	}
}

// replacePathVars 替换 {{.Name}} 形式的模板变量，未知变量原样保留
func replacePathVars(tpl string, vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{{."+k+"}}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tpl)
}

// validateConfigPath 路径必须指向已存在的普通文件；不存在时错误包装 fs.ErrNotExist
func validateConfigPath(path string) error {
	if path == "" {
		return errors.New("path is empty")
	}

	fi, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %s", fs.ErrNotExist, path)
	case err != nil:
		return fmt.Errorf("stat path failed: %w", err)
	case fi.IsDir():
		return fmt.Errorf("path is a directory: %s", path)
	}
	return nil
}
