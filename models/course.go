package models

type Course struct {
	ID        int    `json:"id" db:"id"`
	Name      string `json:"name" db:"name"`
	HoleCount int    `json:"hole_count" db:"hole_count"`
	Pars      []int  `json:"pars,omitempty" db:"pars"`
}

// HasHole reports whether hole is within [1, HoleCount].
func (c *Course) HasHole(hole int) bool {
	return c != nil && hole >= 1 && hole <= c.HoleCount
}
