package utils

import (
	"math"

	"garland/server/domain"
)

// FiniteVec3 は全成分が NaN でも無限大でもないことを報告します。
func FiniteVec3(v domain.Vec3) bool {
	return isFinite(v.X) && isFinite(v.Y) && isFinite(v.Z)
}

// FiniteRotation は全成分が NaN でも無限大でもないことを報告します。
func FiniteRotation(r domain.Rotation) bool {
	return isFinite(r.X) && isFinite(r.Y)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
