package events

import (
	"net/http"

	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/features/shared"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/inputval"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/respond"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/timeouts"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/lifecycle"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type attendanceInput struct {
	Attendance []struct {
		StudentID string `json:"student_id" validate:"required,objectid"`
		Present   bool   `json:"present"`
	} `json:"attendance" validate:"required,min=1,dive"`
}

// HandleMarkAttendance handles POST /api/events/{id}/attendance.
func (h *Handler) HandleMarkAttendance(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r, h.ErrLog)
	if !ok {
		return
	}
	id, ok := shared.PathID(w, r, h.ErrLog, "id")
	if !ok {
		return
	}
	var in attendanceInput
	if err := inputval.Decode(r, &in); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	batch := make([]lifecycle.AttendanceMark, 0, len(in.Attendance))
	for _, a := range in.Attendance {
		oid, _ := primitive.ObjectIDFromHex(a.StudentID)
		batch = append(batch, lifecycle.AttendanceMark{StudentID: oid, Present: a.Present})
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "mark attendance")
	defer cancel()

	res, err := h.Svc.MarkAttendance(ctx, actor, id, batch)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	respond.OK(w, res)
}

// ServeAttendance handles GET /api/events/{id}/attendance.
func (h *Handler) ServeAttendance(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r, h.ErrLog)
	if !ok {
		return
	}
	id, ok := shared.PathID(w, r, h.ErrLog, "id")
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "attendance")
	defer cancel()

	list, err := h.Svc.Attendance(ctx, actor, id)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	respond.OK(w, list)
}
