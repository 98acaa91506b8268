package application

import "garland/server/domain"

// EntityKind はマップ要素の種別です。
type EntityKind string

const (
	EntityWall      EntityKind = "wall"
	EntityExit      EntityKind = "exit"
	EntityBillboard EntityKind = "billboard"
	EntityFlag      EntityKind = "flag"
)

// MapEntity はマップ上の1要素です。種別ごとに使うフィールドが異なり、
// サーバーが読むのは exit（スポーン・返却地点）と flag（地面のフラッグ）だけです。
type MapEntity struct {
	Kind     EntityKind  `json:"type"`
	Position domain.Vec3 `json:"position"`
	Width    float64     `json:"width,omitempty"`
	Height   float64     `json:"height,omitempty"`
	Depth    float64     `json:"depth,omitempty"`
	Rotation float64     `json:"rotation,omitempty"`
	TeamID   int         `json:"teamId,omitempty"`
	Text     string      `json:"text,omitempty"`
}

// MapData はマップ全体の形状です。
type MapData struct {
	Width    float64     `json:"width"`
	Height   float64     `json:"height"`
	Entities []MapEntity `json:"entities"`
}

// Generator はマップ形状の生成器です。ラウンドの開始と再開始のたびに呼ばれます。
type Generator interface {
	Generate() MapData
}

// MapContext は現在のマップと、そこから導出した情報を保持します。
type MapContext struct {
	gen   Generator
	data  MapData
	exits map[int]domain.Vec3
}

func NewMapContext(gen Generator) *MapContext {
	mc := &MapContext{gen: gen}
	mc.Reset()
	return mc
}

// Reset は生成器からマップを作り直し、出口座標を引き直します。
func (mc *MapContext) Reset() {
	mc.data = mc.gen.Generate()
	mc.exits = make(map[int]domain.Vec3)
	for _, e := range mc.data.Entities {
		if e.Kind == EntityExit {
			mc.exits[e.TeamID] = e.Position
		}
	}
}

// ExitPoint はチームの出口（スポーン地点兼フラッグ返却地点）を返します。
func (mc *MapContext) ExitPoint(teamID int) domain.Vec3 {
	return mc.exits[teamID]
}

// FlagPosition は地面に置かれたフラッグの座標を返します。
// 誰かが保持している間、フラッグ要素はマップ上に存在しません。
func (mc *MapContext) FlagPosition() (domain.Vec3, bool) {
	for _, e := range mc.data.Entities {
		if e.Kind == EntityFlag {
			return e.Position, true
		}
	}
	return domain.Vec3{}, false
}

// TakeFlag はフラッグ要素をマップから取り除きます。取り除けたかどうかを
// 返すので、同一Tick内の奪い合いは最初の1人だけが成功します。
func (mc *MapContext) TakeFlag() bool {
	for i, e := range mc.data.Entities {
		if e.Kind == EntityFlag {
			mc.data.Entities = append(mc.data.Entities[:i], mc.data.Entities[i+1:]...)
			return true
		}
	}
	return false
}

// PlaceFlag はフラッグ要素を pos に置きます。
func (mc *MapContext) PlaceFlag(pos domain.Vec3) {
	mc.data.Entities = append(mc.data.Entities, MapEntity{Kind: EntityFlag, Position: pos})
}

// InBounds は水平方向（x, z）がマップ内かどうかを返します。高さは見ません。
func (mc *MapContext) InBounds(pos domain.Vec3) bool {
	halfW := mc.data.Width / 2
	halfH := mc.data.Height / 2
	return pos.X >= -halfW && pos.X <= halfW && pos.Z >= -halfH && pos.Z <= halfH
}

// Data は現在のマップのコピーを返します。
func (mc *MapContext) Data() MapData {
	entities := make([]MapEntity, len(mc.data.Entities))
	copy(entities, mc.data.Entities)
	return MapData{Width: mc.data.Width, Height: mc.data.Height, Entities: entities}
}
