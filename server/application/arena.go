package application

import "garland/server/domain"

const (
	defaultArenaWidth  = 60.0
	defaultArenaHeight = 60.0

	wallHeight    = 3.0
	wallThickness = 1.0
)

// ArenaGenerator は壁に囲まれた矩形アリーナを決定的に生成します。
// 中央にフラッグ、南北の壁際に各チームの出口、中腹に遮蔽用の壁を置きます。
type ArenaGenerator struct {
	Width      float64
	Height     float64
	Billboards []string
}

var _ Generator = ArenaGenerator{}

func (g ArenaGenerator) Generate() MapData {
	w, h := g.Width, g.Height
	if w <= 0 {
		w = defaultArenaWidth
	}
	if h <= 0 {
		h = defaultArenaHeight
	}

	entities := []MapEntity{
		// 外周の壁
		{Kind: EntityWall, Position: domain.Vec3{Z: -h / 2}, Width: w, Height: wallHeight, Depth: wallThickness},
		{Kind: EntityWall, Position: domain.Vec3{Z: h / 2}, Width: w, Height: wallHeight, Depth: wallThickness},
		{Kind: EntityWall, Position: domain.Vec3{X: -w / 2}, Width: wallThickness, Height: wallHeight, Depth: h},
		{Kind: EntityWall, Position: domain.Vec3{X: w / 2}, Width: wallThickness, Height: wallHeight, Depth: h},
		// 中腹の遮蔽
		{Kind: EntityWall, Position: domain.Vec3{X: -w / 4}, Width: wallThickness, Height: wallHeight, Depth: 8},
		{Kind: EntityWall, Position: domain.Vec3{X: w / 4}, Width: wallThickness, Height: wallHeight, Depth: 8},
		// チーム出口
		{Kind: EntityExit, Position: domain.Vec3{Z: -h/2 + 2}, TeamID: 1},
		{Kind: EntityExit, Position: domain.Vec3{Z: h/2 - 2}, TeamID: 2},
		// 中央のフラッグ
		{Kind: EntityFlag, Position: domain.Vec3{}},
	}

	for i, text := range g.Billboards {
		entities = append(entities, MapEntity{
			Kind:     EntityBillboard,
			Position: domain.Vec3{X: -w/2 + 1, Y: 2, Z: -h/2 + 4 + float64(i)*4},
			Rotation: 90,
			Text:     text,
		})
	}

	return MapData{Width: w, Height: h, Entities: entities}
}
