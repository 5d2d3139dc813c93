package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsRented(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	t.Run("no window", func(t *testing.T) {
		car := Car{}
		assert.False(t, car.IsRented(now))
	})

	t.Run("window in the future", func(t *testing.T) {
		end := now.Add(2 * time.Hour)
		car := Car{RentEndTime: &end}
		assert.True(t, car.IsRented(now))
	})

	t.Run("window ended", func(t *testing.T) {
		end := now.Add(-time.Hour)
		car := Car{RentEndTime: &end}
		assert.False(t, car.IsRented(now))
	})

	t.Run("window ending exactly now is free", func(t *testing.T) {
		end := now
		car := Car{RentEndTime: &end}
		assert.False(t, car.IsRented(now))
	})
}

func TestOverlaps(t *testing.T) {
	start := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(4 * time.Hour)
	car := Car{RentStartTime: &start, RentEndTime: &end}

	assert.True(t, car.Overlaps(start.Add(time.Hour), end.Add(time.Hour)))
	assert.True(t, car.Overlaps(start.Add(-time.Hour), start.Add(time.Hour)))
	assert.False(t, car.Overlaps(end, end.Add(time.Hour)))
	assert.False(t, car.Overlaps(start.Add(-2*time.Hour), start))

	free := Car{}
	assert.False(t, free.Overlaps(start, end))
}
