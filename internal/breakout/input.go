package breakout

// Input 每帧的玩家输入
type Input interface {
	// Axis 水平方向输入，范围 [-1, 1]
	Axis() float64
	// PlayPressed 本帧是否按下开始键
	PlayPressed() bool
	// EndFrame 在每帧结束时调用
	EndFrame()
}

// Key 游戏按键
type Key int

const (
	KeyNone Key = iota
	KeyLeft
	KeyRight
	KeyPlay
)

func (k Key) String() string {
	switch k {
	case KeyLeft:
		return "Left"
	case KeyRight:
		return "Right"
	case KeyPlay:
		return "Play"
	}
	return "None"
}

// DefaultHoldTicks 终端不上报按键抬起，方向键按下后保持的帧数
const DefaultHoldTicks = 6

// Keyboard 将离散的终端按键转换为连续的方向输入
//
// 方向键按下后保持 holdTicks 帧，期间重复按键会刷新计时；
// 开始键只在按下的那一帧有效。非并发安全，应在游戏协程上使用
type Keyboard struct {
	holdTicks int
	axis      float64
	remaining int
	play      bool
}

func NewKeyboard(holdTicks int) *Keyboard {
	if holdTicks <= 0 {
		holdTicks = DefaultHoldTicks
	}
	return &Keyboard{holdTicks: holdTicks}
}

// Press 记录一次按键
func (k *Keyboard) Press(key Key) {
	switch key {
	case KeyLeft:
		k.axis, k.remaining = -1, k.holdTicks
	case KeyRight:
		k.axis, k.remaining = 1, k.holdTicks
	case KeyPlay:
		k.play = true
	}
}

// Trigger 使 Keyboard 可作为 Mailbox 的投递目标
func (k *Keyboard) Trigger(key Key) { k.Press(key) }

func (k *Keyboard) Axis() float64 {
	if k.remaining <= 0 {
		return 0
	}
	return k.axis
}

func (k *Keyboard) PlayPressed() bool { return k.play }

func (k *Keyboard) EndFrame() {
	k.play = false
	if k.remaining > 0 {
		k.remaining--
	}
}
