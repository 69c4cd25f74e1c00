package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rabogan/esl-lesson-system/internal/model"
	"go.uber.org/zap"
)

// NewRouter assembles the engine's HTTP surface. Everything under /api/v1
// requires a principal resolved by the upstream auth layer.
func NewRouter(
	logger *zap.Logger,
	slots *SlotHandler,
	bookings *BookingHandler,
	records *RecordHandler,
	users *UserHandler,
) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(RequestLogger(logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(Authenticate)

		r.Get("/slots", slots.ListAvailable)
		r.Get("/bookings/upcoming", bookings.Upcoming)
		r.Get("/lesson-records", records.History)
		r.Get("/lesson-records/{recordID}", records.Get)
		r.Get("/me", users.Me)
		r.Put("/me/timezone", users.UpdateTimezone)

		r.Group(func(r chi.Router) {
			r.Use(RequireRole(model.RoleTeacher))

			r.Get("/schedule", slots.TeacherWeek)
			r.Post("/slots", slots.Open)
			r.Delete("/slots/{slotID}", slots.Close)
			r.Get("/lesson-records/outstanding", records.Outstanding)
			r.Get("/lesson-records/latest", records.MostRecentFinalized)
			r.Put("/lesson-records/{recordID}", records.Edit)
		})

		r.Group(func(r chi.Router) {
			r.Use(RequireRole(model.RoleStudent))

			r.Post("/bookings", bookings.Book)
			r.Delete("/bookings/{bookingID}", bookings.Cancel)
		})
	})

	return r
}
