package config

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
)

// DefaultWatchDebounce 文件事件合并窗口
const DefaultWatchDebounce = 200 * time.Millisecond

// Watcher 配置热更新监听器
// 文件变化时重新读取并解析为 T，经 validate 校验通过后替换当前配置并触发回调；
// 失败时保留旧配置并交给 onError。
//
// 一次保存通常产生截断、写入等多个事件，Watcher 在 debounce 窗口内只重载一次，
// 且拒绝空文件以及缺少 requiredKeys 的文件。
type Watcher[T any] struct {
	path         string
	opts         []Option
	validate     func(*T) error
	onError      func(error)
	requiredKeys []string
	debounce     time.Duration

	current   atomic.Pointer[T]
	mu        sync.Mutex
	callbacks []func(*T)
	timer     *time.Timer
	closed    atomic.Bool
}

// WatcherOption Watcher 选项
type WatcherOption[T any] func(*Watcher[T])

// WithValidateFunc 设置新配置的校验函数
func WithValidateFunc[T any](fn func(*T) error) WatcherOption[T] {
	return func(w *Watcher[T]) { w.validate = fn }
}

// WithErrorHandler 设置重载失败时的处理函数
func WithErrorHandler[T any](fn func(error)) WatcherOption[T] {
	return func(w *Watcher[T]) { w.onError = fn }
}

// WithManagerOptions 设置每次加载使用的 Manager 选项
func WithManagerOptions[T any](opts ...Option) WatcherOption[T] {
	return func(w *Watcher[T]) { w.opts = append(w.opts, opts...) }
}

// WithRequiredKeys 文件中必须存在的键，缺失时本次加载失败
func WithRequiredKeys[T any](keys ...string) WatcherOption[T] {
	return func(w *Watcher[T]) { w.requiredKeys = append(w.requiredKeys, keys...) }
}

// WithDebounce 设置文件事件合并窗口，<= 0 时使用 DefaultWatchDebounce
func WithDebounce[T any](d time.Duration) WatcherOption[T] {
	return func(w *Watcher[T]) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// NewWatcher 加载 path 并开始监听
func NewWatcher[T any](path string, opts ...WatcherOption[T]) (*Watcher[T], error) {
	w := &Watcher[T]{
		path:     path,
		validate: func(*T) error { return nil },
		onError:  func(error) {},
		debounce: DefaultWatchDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}

	cfg, mgr, err := w.load()
	if err != nil {
		return nil, err
	}
	w.current.Store(cfg)

	if err := mgr.Watch(w.schedule); err != nil {
		return nil, err
	}
	return w, nil
}

// Current 返回当前配置（只读使用）
func (w *Watcher[T]) Current() *T {
	return w.current.Load()
}

// OnChange 注册配置变化回调
func (w *Watcher[T]) OnChange(fn func(*T)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, fn)
}

// schedule 文件事件到达时推迟重载，窗口内的后续事件重置计时
func (w *Watcher[T]) schedule() {
	if w.closed.Load() {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer == nil {
		w.timer = time.AfterFunc(w.debounce, w.Reload)
		return
	}
	w.timer.Reset(w.debounce)
}

// Reload 立即重新加载配置文件
func (w *Watcher[T]) Reload() {
	if w.closed.Load() {
		return
	}

	cfg, _, err := w.load()
	if err != nil {
		w.onError(err)
		return
	}
	w.current.Store(cfg)

	w.mu.Lock()
	callbacks := append([]func(*T){}, w.callbacks...)
	w.mu.Unlock()

	for _, fn := range callbacks {
		fn(cfg)
	}
}

// Close 停止分发变化，viper 自身的监听协程随进程退出
func (w *Watcher[T]) Close() error {
	w.closed.Store(true)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	return nil
}

func (w *Watcher[T]) load() (*T, Manager, error) {
	mgr := NewManager(w.opts...)
	if err := mgr.LoadFile(w.path); err != nil {
		return nil, nil, err
	}
	if len(mgr.AllSettings()) == 0 {
		return nil, nil, errors.Wrapf(ErrEmptyConfig, "path %s", w.path)
	}
	for _, key := range w.requiredKeys {
		if !mgr.IsSet(key) {
			return nil, nil, errors.Wrapf(ErrMissingKey, "key %q in %s", key, w.path)
		}
	}

	cfg := new(T)
	if err := mgr.Unmarshal(cfg); err != nil {
		return nil, nil, err
	}
	if err := w.validate(cfg); err != nil {
		return nil, nil, err
	}
	return cfg, mgr, nil
}
