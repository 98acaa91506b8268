package application

// Weapon は武器種別ごとの静的な弾道パラメータです。
// サーバーの弾道計算とクライアント側の予測が同じ表を参照します。
type Weapon struct {
	Speed    float64
	Gravity  float64
	Damage   int
	MaxRange float64
}

// DefaultWeaponType は weaponType 省略時に使われる武器です。
const DefaultWeaponType = "rifle"

var weapons = map[string]Weapon{
	"rifle":  {Speed: 30, Gravity: 9.8, Damage: 1, MaxRange: 100},
	"pistol": {Speed: 20, Gravity: 9.8, Damage: 1, MaxRange: 40},
}

// WeaponByType は武器種別からパラメータを引きます。空文字は既定の武器に
// なり、未知の種別は不正として弾きます。2番目の戻り値は確定後の種別名です。
func WeaponByType(weaponType string) (Weapon, string, bool) {
	if weaponType == "" {
		weaponType = DefaultWeaponType
	}
	w, ok := weapons[weaponType]
	return w, weaponType, ok
}
