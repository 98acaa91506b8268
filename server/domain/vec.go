package domain

import "math"

// Vec3 はワールド座標上の3次元ベクトルです。Y が上方向です。
// JSONフィールド名はクライアントプロトコルに合わせています。
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Rotation はプレイヤーの向きを表します。Y がヨー、X がピッチです。
type Rotation struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

func (v Vec3) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Normalized は v と同じ向きの単位ベクトルを返します。
// 長さがほぼゼロの場合は ok=false です。
func (v Vec3) Normalized() (Vec3, bool) {
	l := v.Length()
	if l < 1e-9 {
		return Vec3{}, false
	}
	return Vec3{X: v.X / l, Y: v.Y / l, Z: v.Z / l}, true
}

// DistanceTo は v から o までのユークリッド距離を返します。
func (v Vec3) DistanceTo(o Vec3) float64 {
	return v.Sub(o).Length()
}
