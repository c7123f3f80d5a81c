package analysis

import (
	"github.com/samber/lo"

	"github.com/saturnino-fabrica-de-software/facescan/internal/domain"
)

// SelectLargest picks the candidate with the largest area. On equal areas the
// first one in detector order wins; the detector's ordering is the only tie-break.
func SelectLargest(boxes []domain.BoundingBox) (domain.BoundingBox, bool) {
	if len(boxes) == 0 {
		return domain.BoundingBox{}, false
	}

	return lo.MaxBy(boxes, func(a, b domain.BoundingBox) bool {
		return a.Area() > b.Area()
	}), true
}
