package sim

import "math"

// Direction 八向罗盘方位（服务端下发的小写文本）
type Direction string

const (
	DirNorth     Direction = "north"
	DirNortheast Direction = "northeast"
	DirEast      Direction = "east"
	DirSoutheast Direction = "southeast"
	DirSouth     Direction = "south"
	DirSouthwest Direction = "southwest"
	DirWest      Direction = "west"
	DirNorthwest Direction = "northwest"
)

// diag = √2/2，对角方向的单位向量分量
var diag = math.Sqrt2 / 2

// directionVectors 八向单位向量表
var directionVectors = map[Direction]Vec2{
	DirNorth:     {0, 1},
	DirNortheast: {diag, diag},
	DirEast:      {1, 0},
	DirSoutheast: {diag, -diag},
	DirSouth:     {0, -1},
	DirSouthwest: {-diag, -diag},
	DirWest:      {-1, 0},
	DirNorthwest: {-diag, diag},
}

// AllDirections 固定遍历顺序（与服务端响应字段一致）
var AllDirections = []Direction{
	DirNorth, DirNortheast, DirEast, DirSoutheast,
	DirSouth, DirSouthwest, DirWest, DirNorthwest,
}

// ResolveAbsolute 将极坐标探测（方位+距离）换算为世界绝对坐标
// own 为上报单元自身位置；未知方位返回 ok=false，调用方按无探测处理
func ResolveAbsolute(dir Direction, distance float64, own Vec2) (Vec2, bool) {
	u, ok := directionVectors[dir]
	if !ok {
		return Vec2{}, false
	}
	return own.Add(u.Scale(distance)), true
}
