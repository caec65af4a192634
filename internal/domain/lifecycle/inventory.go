package lifecycle

import (
	"fmt"

	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/apperr"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Delta is a signed change to one resource's reservation. Positive means
// reserve more, negative means release.
type Delta struct {
	ResourceID primitive.ObjectID
	Change     int
}

// AdjustDelta is newQuantity - previousQuantity for one resource.
func AdjustDelta(resourceID primitive.ObjectID, previous, next int) Delta {
	return Delta{ResourceID: resourceID, Change: next - previous}
}

// ValidateResource checks the fields of a new resource.
func ValidateResource(name, typ string, total, available int) error {
	fields := map[string]string{}
	if name == "" {
		fields["name"] = "name is required"
	}
	if typ == "" {
		fields["type"] = "type is required"
	}
	if total < 0 {
		fields["total"] = "total cannot be negative"
	}
	if available < 0 {
		fields["available"] = "available cannot be negative"
	} else if available > total {
		fields["available"] = "available cannot exceed total"
	}
	if len(fields) > 0 {
		return apperr.ValidationFields(fields)
	}
	return nil
}

// NormalizeLines validates request lines (every quantity positive, every
// id set) and folds repeated resources into one line, keeping first-seen
// order.
func NormalizeLines(lines []models.ResourceLine) ([]models.ResourceLine, error) {
	fields := map[string]string{}
	idx := make(map[primitive.ObjectID]int, len(lines))
	out := make([]models.ResourceLine, 0, len(lines))

	for i, l := range lines {
		if l.ResourceID.IsZero() {
			fields[fmt.Sprintf("resources[%d].resource_id", i)] = "resource_id is required"
			continue
		}
		if l.Quantity <= 0 {
			fields[fmt.Sprintf("resources[%d].quantity", i)] = "quantity must be a positive number"
			continue
		}
		if j, ok := idx[l.ResourceID]; ok {
			out[j].Quantity += l.Quantity
			continue
		}
		idx[l.ResourceID] = len(out)
		out = append(out, l)
	}

	if len(fields) > 0 {
		return nil, apperr.ValidationFields(fields)
	}
	return out, nil
}

// MergeLines adds extra into base: quantities of resources already present
// are incremented, new resources are appended.
func MergeLines(base, extra []models.ResourceLine) []models.ResourceLine {
	out := append([]models.ResourceLine(nil), base...)
	for _, l := range extra {
		found := false
		for i := range out {
			if out[i].ResourceID == l.ResourceID {
				out[i].Quantity += l.Quantity
				found = true
				break
			}
		}
		if !found {
			out = append(out, l)
		}
	}
	return out
}

// ReserveDeltas turns lines into positive deltas.
func ReserveDeltas(lines []models.ResourceLine) []Delta {
	out := make([]Delta, 0, len(lines))
	for _, l := range lines {
		out = append(out, Delta{ResourceID: l.ResourceID, Change: l.Quantity})
	}
	return out
}

// ReleaseDeltas turns lines into negative deltas.
func ReleaseDeltas(lines []models.ResourceLine) []Delta {
	out := make([]Delta, 0, len(lines))
	for _, l := range lines {
		if l.Quantity > 0 {
			out = append(out, Delta{ResourceID: l.ResourceID, Change: -l.Quantity})
		}
	}
	return out
}

// Invert flips the sign of every delta, used to compensate.
func Invert(ds []Delta) []Delta {
	out := make([]Delta, len(ds))
	for i, d := range ds {
		out[i] = Delta{ResourceID: d.ResourceID, Change: -d.Change}
	}
	return out
}

// PlanAssignment computes the new assignment and the inventory deltas
// when an institution sets desired quantities. Resources not mentioned keep
// their quantity; a desired quantity of zero removes the line.
func PlanAssignment(current, desired []models.ResourceLine) ([]models.ResourceLine, []Delta, error) {
	fields := map[string]string{}
	seen := map[primitive.ObjectID]bool{}
	for i, d := range desired {
		switch {
		case d.ResourceID.IsZero():
			fields[fmt.Sprintf("resources[%d].resource_id", i)] = "resource_id is required"
		case d.Quantity < 0:
			fields[fmt.Sprintf("resources[%d].quantity", i)] = "quantity cannot be negative"
		case seen[d.ResourceID]:
			fields[fmt.Sprintf("resources[%d].resource_id", i)] = "resource listed twice"
		}
		seen[d.ResourceID] = true
	}
	if len(fields) > 0 {
		return nil, nil, apperr.ValidationFields(fields)
	}

	next := append([]models.ResourceLine(nil), current...)
	var deltas []Delta
	for _, d := range desired {
		prev := 0
		pos := -1
		for i, l := range next {
			if l.ResourceID == d.ResourceID {
				prev, pos = l.Quantity, i
				break
			}
		}
		if delta := AdjustDelta(d.ResourceID, prev, d.Quantity); delta.Change != 0 {
			deltas = append(deltas, delta)
		}
		switch {
		case pos >= 0 && d.Quantity == 0:
			next = append(next[:pos], next[pos+1:]...)
		case pos >= 0:
			next[pos].Quantity = d.Quantity
		case d.Quantity > 0:
			next = append(next, d)
		}
	}
	return next, deltas, nil
}

// SplitDeltas separates reservations from releases.
func SplitDeltas(ds []Delta) (reserve, release []Delta) {
	for _, d := range ds {
		switch {
		case d.Change > 0:
			reserve = append(reserve, d)
		case d.Change < 0:
			release = append(release, d)
		}
	}
	return reserve, release
}

// CheckReserve explains whether the resource can cover qty.
func CheckReserve(r models.Resource, qty int) error {
	if qty > r.Available {
		return apperr.InsufficientAvailability(r.ID, r.Name, r.Available, qty)
	}
	return nil
}

// CheckRelease explains whether qty can be returned without exceeding total.
func CheckRelease(r models.Resource, qty int) error {
	if r.Available+qty > r.Total {
		return apperr.Conflict("releasing %d of %s would exceed its total of %d", qty, r.Name, r.Total)
	}
	return nil
}
