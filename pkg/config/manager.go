package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/junbin-yang/go-breakout/pkg/logger"
)

// ErrConfigNotFound 默认路径下没有找到配置文件
var ErrConfigNotFound = errors.New("no valid config file found")

// Defaulter 配置结构体可实现该接口，在解析前填充默认值
type Defaulter interface {
	SetDefaults()
}

// Validator 配置结构体可实现该接口，解析后校验；校验失败时加载/重载失败
type Validator interface {
	Validate() error
}

// ConfigManager 通用配置管理器
type ConfigManager struct {
	instance         interface{}  // 配置实例
	configPath       string       // 配置文件路径
	appName          string       // 应用名称
	serializer       Serializer   // 当前使用的序列化器
	forceFormat      Serializer   // 强制指定的格式（优先级最高）
	supportedFormats []Serializer // 支持的配置格式列表
	defaultPaths     []string     // 默认配置路径模板
	once             sync.Once    // 确保配置只加载一次
	mu               sync.RWMutex // 读写锁
	loadErr          error        // 加载错误
	log              logger.Logger

	// 配置监听相关
	enableWatch           bool              // 是否启用配置监听
	watchDebounceInterval time.Duration     // 防抖间隔
	watcher               *fsnotify.Watcher // 文件监听器
	watchQuit             chan struct{}     // 监听退出信号
	closeOnce             sync.Once

	// 配置变更回调
	callbacks []func(old, new interface{})
}

// NewConfigManager 创建配置管理器实例
// cfg: 配置结构体指针（必须传入指针）
func NewConfigManager(cfg interface{}, options ...Option) *ConfigManager {
	if cfg == nil {
		panic("config instance cannot be nil")
	}
	if reflect.ValueOf(cfg).Kind() != reflect.Ptr {
		panic("config instance must be a pointer")
	}

	cm := &ConfigManager{
		instance:         cfg,
		appName:          "app",
		serializer:       &YAMLSerializer{},
		supportedFormats: []Serializer{&YAMLSerializer{}, &JSONSerializer{}, &INISerializer{}},
		defaultPaths: []string{
			"./{{.AppName}}",
			"./configs/{{.AppName}}",
			"{{.ExecDir}}/{{.AppName}}",
			"{{.HomeDir}}/.config/{{.AppName}}/{{.AppName}}",
			"/etc/{{.AppName}}",
		},
		watchDebounceInterval: 500 * time.Millisecond,
		watchQuit:             make(chan struct{}),
	}

	for _, opt := range options {
		opt(cm)
	}
	if cm.log == nil {
		cm.log = logger.Default()
	}

	return cm
}

// LoadConfig 加载配置文件
// customPath: 自定义配置路径，空字符串使用默认路径
func (cm *ConfigManager) LoadConfig(customPath string) error {
	cm.once.Do(func() {
		var err error

		// 1. 处理自定义路径
		if customPath != "" {
			if err = validateConfigPath(customPath); err != nil {
				cm.loadErr = fmt.Errorf("invalid custom config path: %w", err)
				return
			}
			cm.configPath = customPath
			cm.chooseSerializer(customPath)
		} else {
			// 2. 查找默认路径
			if cm.configPath, err = cm.findDefaultConfigPath(); err != nil {
				cm.loadErr = fmt.Errorf("default config not found: %w", err)
				return
			}
		}

		// 3. 解析配置文件
		if err = cm.decode(cm.configPath, cm.instance); err != nil {
			cm.loadErr = err
			return
		}

		cm.log.Info("config loaded",
			logger.String("path", cm.configPath),
			logger.String("format", cm.serializer.GetName()))

		// 4. 启动配置监听（如果启用）
		if cm.enableWatch {
			if err = cm.startWatch(); err != nil {
				cm.log.Warn("config watch disabled", logger.Err(err))
			}
		}
	})

	return cm.loadErr
}

// GetConfig 获取配置实例
func (cm *ConfigManager) GetConfig() (interface{}, error) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	if cm.loadErr != nil {
		return nil, cm.loadErr
	}
	if cm.configPath == "" {
		return nil, errors.New("config not initialized, call LoadConfig first")
	}
	return cm.instance, nil
}

// ConfigPath 返回当前使用的配置文件路径
func (cm *ConfigManager) ConfigPath() string {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.configPath
}

// SaveConfig 保存配置到文件
func (cm *ConfigManager) SaveConfig() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.configPath == "" {
		return errors.New("config not initialized")
	}

	data, err := cm.serializer.Marshal(cm.instance)
	if err != nil {
		return fmt.Errorf("marshal config failed: %w", err)
	}

	// 先写入临时文件（避免文件损坏）
	tmpPath := cm.configPath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp config failed: %w", err)
	}
	if err := os.Rename(tmpPath, cm.configPath); err != nil {
		return fmt.Errorf("rename temp config failed: %w", err)
	}

	return nil
}

// ReloadConfig 手动重新加载配置
// 解析或校验失败时保留旧配置
func (cm *ConfigManager) ReloadConfig() error {
	currentPath := cm.ConfigPath()
	if currentPath == "" {
		return errors.New("config path not initialized")
	}
	if err := validateConfigPath(currentPath); err != nil {
		return fmt.Errorf("invalid config path: %w", err)
	}

	newInstance := cm.createNewInstance()
	if newInstance == nil {
		return errors.New("create new config instance failed")
	}
	if err := cm.decode(currentPath, newInstance); err != nil {
		return err
	}

	cm.mu.Lock()
	oldInstance := cm.instance
	cm.instance = newInstance
	cm.loadErr = nil

	// 复制回调列表（避免死锁）
	callbacks := make([]func(old, new interface{}), len(cm.callbacks))
	copy(callbacks, cm.callbacks)
	cm.mu.Unlock()

	// 触发配置变更回调（在锁外执行）
	for _, callback := range callbacks {
		callback(oldInstance, newInstance)
	}

	return nil
}

// EnableWatch 动态启用/禁用配置监听
func (cm *ConfigManager) EnableWatch(enable bool) error {
	cm.enableWatch = enable
	if !enable {
		cm.stopWatch()
		return nil
	}
	if cm.ConfigPath() == "" {
		return nil
	}
	return cm.startWatch()
}

// Close 关闭配置管理器（停止监听）
func (cm *ConfigManager) Close() {
	cm.closeOnce.Do(func() {
		cm.stopWatch()
		close(cm.watchQuit)
	})
}

// OnChange 注册配置变更回调
func (cm *ConfigManager) OnChange(callback func(old, new interface{})) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, callback)
}

/* ------------------------------ 内部方法 ------------------------------ */

// decode 读取文件 → 默认值 → 反序列化 → 环境变量覆盖 → 校验
func (cm *ConfigManager) decode(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file failed: %w", err)
	}

	if d, ok := v.(Defaulter); ok {
		d.SetDefaults()
	}
	if err := cm.serializer.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal failed (%s): %w", cm.serializer.GetName(), err)
	}
	if err := applyEnvOverrides(v); err != nil {
		return fmt.Errorf("apply env overrides failed: %w", err)
	}
	if val, ok := v.(Validator); ok {
		if err := val.Validate(); err != nil {
			return fmt.Errorf("validate config failed: %w", err)
		}
	}
	return nil
}

// chooseSerializer 选择序列化器（强制格式 > 后缀识别 > 默认）
func (cm *ConfigManager) chooseSerializer(path string) {
	if cm.forceFormat != nil {
		cm.serializer = cm.forceFormat
		return
	}
	if f, ok := serializerFor(cm.supportedFormats, path); ok {
		cm.serializer = f
	}
}

// findDefaultConfigPath 查找默认配置路径
func (cm *ConfigManager) findDefaultConfigPath() (string, error) {
	vars := pathVars(cm.appName)
	for _, pathTpl := range cm.defaultPaths {
		basePath := replacePathVars(pathTpl, vars)

		// 先尝试无后缀文件
		if err := validateConfigPath(basePath); err == nil {
			cm.chooseSerializer(basePath)
			return basePath, nil
		}

		// 尝试带后缀的文件
		for _, format := range cm.supportedFormats {
			fullPath := basePath + format.GetFileExt()
			if err := validateConfigPath(fullPath); err == nil {
				cm.chooseSerializer(fullPath)
				return fullPath, nil
			}
		}
	}

	return "", fmt.Errorf("%w (tried default paths and formats)", ErrConfigNotFound)
}

// startWatch 启动配置文件监听
// 监听所在目录而不是文件本身，编辑器以重命名方式保存时不会丢失监听
func (cm *ConfigManager) startWatch() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.watcher != nil {
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher failed: %w", err)
	}
	if err := w.Add(filepath.Dir(cm.configPath)); err != nil {
		_ = w.Close()
		return fmt.Errorf("add watch path failed: %w", err)
	}
	cm.watcher = w

	go cm.watchLoop(w, filepath.Clean(cm.configPath))
	return nil
}

// stopWatch 停止配置文件监听
func (cm *ConfigManager) stopWatch() {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.watcher != nil {
		_ = cm.watcher.Close()
		cm.watcher = nil
	}
}

// watchLoop 监听文件变化循环
func (cm *ConfigManager) watchLoop(w *fsnotify.Watcher, target string) {
	debounceTimer := time.NewTimer(0)
	if !debounceTimer.Stop() {
		<-debounceTimer.C
	}
	defer debounceTimer.Stop()

	for {
		select {
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			// 处理文件修改/创建/重命名事件
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				debounceTimer.Reset(cm.watchDebounceInterval)
			}

		case <-debounceTimer.C:
			if err := cm.ReloadConfig(); err != nil {
				cm.log.Warn("config auto reload failed", logger.String("path", target), logger.Err(err))
			} else {
				cm.log.Info("config auto reloaded", logger.String("path", target))
			}

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			cm.log.Error("config watch error", logger.Err(err))

		case <-cm.watchQuit:
			return
		}
	}
}

// createNewInstance 创建新的配置实例
func (cm *ConfigManager) createNewInstance() interface{} {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	val := reflect.ValueOf(cm.instance)
	if val.Kind() != reflect.Ptr {
		return nil
	}
	return reflect.New(val.Elem().Type()).Interface()
}
