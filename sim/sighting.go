package sim

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// 目击报告线上格式：三个空白分隔的十进制数 "x y unix秒"
// 传输层可能把字符串载荷再包一层或多层 {"value": ...} 信封，解码时逐层拆开

// DefaultFreshnessWindow 目击报告可信的最大时龄（秒）
const DefaultFreshnessWindow = 1.0

// maxUnwrapDepth 信封拆包的最大层数，超过即视为畸形载荷
const maxUnwrapDepth = 4

var errNotSighting = errors.New("payload is not a sighting")

// EncodeSighting 编码目击报告为文本载荷
func EncodeSighting(s Sighting) string {
	return fmt.Sprintf("%s %s %s",
		strconv.FormatFloat(s.Pos.X, 'f', -1, 64),
		strconv.FormatFloat(s.Pos.Y, 'f', -1, 64),
		strconv.FormatFloat(s.Timestamp, 'f', -1, 64))
}

// DecodeSighting 从原始消息载荷解码目击报告
// 按固定顺序尝试拆包：裸文本 → JSON 字符串 → {"value": ...} 信封，逐层递归；
// 任一层失败即干净地返回错误，畸形或无关消息绝不允许让控制循环崩溃
func DecodeSighting(raw []byte) (Sighting, error) {
	return decodeSighting(raw, 0)
}

func decodeSighting(raw []byte, depth int) (Sighting, error) {
	if depth > maxUnwrapDepth {
		return Sighting{}, errNotSighting
	}

	// 1) 裸文本直接按三元组解析
	if s, err := parseSightingText(string(raw)); err == nil {
		return s, nil
	}

	// 2) JSON 字符串（被引号再编码过一次的载荷）
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return decodeSighting([]byte(str), depth+1)
	}

	// 3) {"value": ...} 信封（可能嵌套）
	var env struct {
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(raw, &env); err == nil && env.Value != nil {
		return decodeSighting(env.Value, depth+1)
	}

	return Sighting{}, errNotSighting
}

// parseSightingText 解析 "x y timestamp" 三元组
func parseSightingText(s string) (Sighting, error) {
	fields := strings.Fields(s)
	if len(fields) != 3 {
		return Sighting{}, errNotSighting
	}
	vals := make([]float64, 3)
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return Sighting{}, errNotSighting
		}
		vals[i] = v
	}
	return Sighting{Pos: Vec2{vals[0], vals[1]}, Timestamp: vals[2]}, nil
}

// IsFresh 目击报告是否足够新鲜：now - timestamp < window
// 中继通道无顺序与送达保证，时龄窗口是防止按过期情报行动的唯一手段
func (s Sighting) IsFresh(now, window float64) bool {
	if window <= 0 {
		window = DefaultFreshnessWindow
	}
	return now-s.Timestamp < window
}

// PayloadHash 载荷的 64 位哈希，用于识别冗余重发的重复消息
func PayloadHash(raw []byte) uint64 {
	return xxhash.Sum64(raw)
}
