package app

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/gym-booking-backend/internal/auth"
	bookingHttp "github.com/nekogravitycat/gym-booking-backend/internal/booking/http"
	"github.com/nekogravitycat/gym-booking-backend/internal/pkg/response"
	"github.com/nekogravitycat/gym-booking-backend/internal/schedule"
	slotHttp "github.com/nekogravitycat/gym-booking-backend/internal/slot/http"
	trainerHttp "github.com/nekogravitycat/gym-booking-backend/internal/trainer/http"
)

var (
	testRouter  *gin.Engine
	testJWT     *auth.JWTManager
	staffToken  string
	clientToken string
	today       = time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	container := NewContainer(Config{
		JWTSecret: "test-secret",
		JWTTTL:    30 * time.Minute,
		Location:  time.UTC,
		Now:       func() time.Time { return today.Add(10 * time.Hour) },
	})
	testRouter = container.Router
	testJWT = container.JWTManager

	var err error
	if staffToken, err = container.JWTManager.GenerateAccessToken("staff-1", auth.RoleStaff); err != nil {
		panic(err)
	}
	if clientToken, err = container.JWTManager.GenerateAccessToken("client-1", auth.RoleClient); err != nil {
		panic(err)
	}

	os.Exit(m.Run())
}

func executeRequest(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody []byte
	if body != nil {
		reqBody, _ = json.Marshal(body)
	}

	req, _ := http.NewRequest(method, path, bytes.NewBuffer(reqBody))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	testRouter.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func createTrainer(t *testing.T, name string) trainerHttp.TrainerResponse {
	t.Helper()
	w := executeRequest("POST", "/v1/trainers", trainerHttp.CreateTrainerRequest{Name: name, Specialty: "Strength"}, staffToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[trainerHttp.TrainerResponse](t, w)
}

func createSlot(t *testing.T, trainerID, day, start, end string) slotHttp.SlotResponse {
	t.Helper()
	w := executeRequest("POST", "/v1/trainers/"+trainerID+"/slots", slotHttp.SlotBody{Day: day, StartTime: start, EndTime: end}, staffToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[slotHttp.SlotResponse](t, w)
}

func bookingBody(trainerID, slotID, date string) bookingHttp.CreateBookingRequest {
	return bookingHttp.CreateBookingRequest{
		TrainerID:   trainerID,
		SlotID:      slotID,
		Date:        date,
		ClientName:  "Robin",
		ClientEmail: "robin@example.com",
	}
}

func TestHealth(t *testing.T) {
	w := executeRequest("GET", "/health/live", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = executeRequest("GET", "/health/ready", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthorization(t *testing.T) {
	w := executeRequest("GET", "/v1/trainers", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = executeRequest("POST", "/v1/trainers", trainerHttp.CreateTrainerRequest{Name: "Nope"}, clientToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	tr := createTrainer(t, "Authz Trainer")

	w = executeRequest("POST", "/v1/trainers/"+tr.ID+"/slots", slotHttp.SlotBody{Day: "Monday", StartTime: "09:00", EndTime: "10:00"}, clientToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = executeRequest("GET", "/v1/trainers/"+tr.ID, nil, clientToken)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBookingFlow(t *testing.T) {
	tr := createTrainer(t, "Flow Trainer")
	mon := createSlot(t, tr.ID, "Monday", "09:00", "10:00")
	tue := createSlot(t, tr.ID, "Tuesday", "09:00", "10:00")

	nextMon := schedule.FormatDate(schedule.NextOccurrence(schedule.Monday, today))
	nextTue := schedule.FormatDate(schedule.NextOccurrence(schedule.Tuesday, today))

	var bookingID string

	t.Run("Slot overlap is a conflict with details", func(t *testing.T) {
		w := executeRequest("POST", "/v1/trainers/"+tr.ID+"/slots", slotHttp.SlotBody{Day: "monday", StartTime: "09:30", EndTime: "10:30"}, staffToken)
		require.Equal(t, http.StatusConflict, w.Code)
		resp := decode[response.ErrorResponse](t, w)
		assert.EqualValues(t, "conflict", resp.Kind)
		assert.Equal(t, mon.ID, resp.Details["slot_id"])

		w = executeRequest("POST", "/v1/trainers/"+tr.ID+"/slots", slotHttp.SlotBody{Day: "Monday", StartTime: "10:00", EndTime: "11:00"}, staffToken)
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("Availability lists the next occurrences", func(t *testing.T) {
		w := executeRequest("GET", "/v1/trainers/"+tr.ID+"/availability", nil, clientToken)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			AsOf  string `json:"as_of"`
			Items []struct {
				SlotID string `json:"slot_id"`
				Date   string `json:"date"`
			} `json:"items"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "2026-10-15", resp.AsOf)
		require.Len(t, resp.Items, 3)
		assert.Equal(t, mon.ID, resp.Items[0].SlotID)
		assert.Equal(t, nextMon, resp.Items[0].Date)
	})

	t.Run("Create booking", func(t *testing.T) {
		w := executeRequest("POST", "/v1/bookings", bookingBody(tr.ID, mon.ID, nextMon), clientToken)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		resp := decode[bookingHttp.BookingResponse](t, w)
		assert.Equal(t, "pending", resp.Status)
		assert.Equal(t, "Monday", resp.Day)
		assert.Equal(t, "09:00", resp.StartTime)
		assert.Equal(t, nextMon, resp.Date)
		bookingID = resp.ID
	})

	t.Run("Create booking: taken occurrence", func(t *testing.T) {
		w := executeRequest("POST", "/v1/bookings", bookingBody(tr.ID, mon.ID, nextMon), clientToken)
		require.Equal(t, http.StatusConflict, w.Code)
		resp := decode[response.ErrorResponse](t, w)
		assert.Equal(t, bookingID, resp.Details["booking_id"])
	})

	t.Run("Create booking: bad requests", func(t *testing.T) {
		w := executeRequest("POST", "/v1/bookings", bookingBody(tr.ID, mon.ID, nextTue), clientToken)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = executeRequest("POST", "/v1/bookings", bookingBody(tr.ID, mon.ID, "2026-10-12"), clientToken)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = executeRequest("POST", "/v1/bookings", bookingBody(tr.ID, mon.ID, "19/10/2026"), clientToken)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = executeRequest("POST", "/v1/bookings", bookingBody("not-a-uuid", mon.ID, nextMon), clientToken)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		body := bookingBody(tr.ID, tue.ID, nextTue)
		body.ClientEmail = ""
		w = executeRequest("POST", "/v1/bookings", body, clientToken)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Availability hides the taken slot", func(t *testing.T) {
		w := executeRequest("GET", "/v1/trainers/"+tr.ID+"/availability?group=day", nil, clientToken)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Days []struct {
				Day   string `json:"day"`
				Slots []struct {
					SlotID string `json:"slot_id"`
				} `json:"slots"`
			} `json:"days"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Days, 2)
		assert.Equal(t, "Monday", resp.Days[0].Day)
		require.Len(t, resp.Days[0].Slots, 1)
		assert.NotEqual(t, mon.ID, resp.Days[0].Slots[0].SlotID)
		assert.Equal(t, "Tuesday", resp.Days[1].Day)
	})

	t.Run("Occurrences mark the active booking", func(t *testing.T) {
		w := executeRequest("GET", "/v1/trainers/"+tr.ID+"/occurrences?from=2026-10-15&to=2026-10-21", nil, clientToken)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Items []bookingOccurrence `json:"items"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Items, 3)

		var taken []bookingOccurrence
		for _, o := range resp.Items {
			if !o.Bookable {
				taken = append(taken, o)
			}
		}
		require.Len(t, taken, 1)
		assert.Equal(t, bookingID, taken[0].ActiveBookingID)

		w = executeRequest("GET", "/v1/trainers/"+tr.ID+"/occurrences?from=2026-10-15&to=2026-12-31", nil, clientToken)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Client cannot change status", func(t *testing.T) {
		w := executeRequest("PATCH", "/v1/bookings/"+bookingID+"/status", bookingHttp.ChangeStatusRequest{Status: "confirmed"}, clientToken)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Reschedule pending booking", func(t *testing.T) {
		w := executeRequest("PATCH", "/v1/bookings/"+bookingID+"/schedule", bookingHttp.RescheduleRequest{SlotID: tue.ID, Date: nextTue}, staffToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		resp := decode[bookingHttp.BookingResponse](t, w)
		assert.Equal(t, tue.ID, resp.SlotID)
		assert.Equal(t, nextTue, resp.Date)
	})

	t.Run("Status transitions", func(t *testing.T) {
		w := executeRequest("PATCH", "/v1/bookings/"+bookingID+"/status", bookingHttp.ChangeStatusRequest{Status: "confirmed"}, staffToken)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "confirmed", decode[bookingHttp.BookingResponse](t, w).Status)

		// Repeating is a no-op.
		w = executeRequest("PATCH", "/v1/bookings/"+bookingID+"/status", bookingHttp.ChangeStatusRequest{Status: "confirmed"}, staffToken)
		assert.Equal(t, http.StatusOK, w.Code)

		w = executeRequest("PATCH", "/v1/bookings/"+bookingID+"/status", bookingHttp.ChangeStatusRequest{Status: "pending"}, staffToken)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.EqualValues(t, "invalid_transition", decode[response.ErrorResponse](t, w).Kind)

		w = executeRequest("PATCH", "/v1/bookings/"+bookingID+"/status", bookingHttp.ChangeStatusRequest{Status: "archived"}, staffToken)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Reschedule confirmed booking is rejected", func(t *testing.T) {
		w := executeRequest("PATCH", "/v1/bookings/"+bookingID+"/schedule", bookingHttp.RescheduleRequest{SlotID: mon.ID, Date: nextMon}, staffToken)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.EqualValues(t, "invalid_state", decode[response.ErrorResponse](t, w).Kind)
	})

	t.Run("List bookings", func(t *testing.T) {
		w := executeRequest("GET", "/v1/bookings?trainer_id="+tr.ID+"&status=confirmed", nil, staffToken)
		require.Equal(t, http.StatusOK, w.Code)
		page := decode[response.PageResponse[bookingHttp.BookingResponse]](t, w)
		assert.Equal(t, 1, page.Total)
		require.Len(t, page.Items, 1)
		assert.Equal(t, bookingID, page.Items[0].ID)

		w = executeRequest("GET", "/v1/bookings?page_size=1000", nil, staffToken)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Delete booking", func(t *testing.T) {
		w := executeRequest("DELETE", "/v1/bookings/"+bookingID, nil, staffToken)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = executeRequest("DELETE", "/v1/bookings/"+bookingID, nil, staffToken)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = executeRequest("GET", "/v1/bookings/"+bookingID, nil, clientToken)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

type bookingOccurrence struct {
	SlotID          string `json:"slot_id"`
	Date            string `json:"date"`
	Bookable        bool   `json:"bookable"`
	ActiveBookingID string `json:"active_booking_id"`
}

func TestBookingsScopedToOwner(t *testing.T) {
	tr := createTrainer(t, "Privacy Trainer")
	sun := createSlot(t, tr.ID, "Sunday", "12:00", "13:00")
	sunLate := createSlot(t, tr.ID, "Sunday", "14:00", "15:00")
	nextSun := schedule.FormatDate(schedule.NextOccurrence(schedule.Sunday, today))

	staffBody := bookingBody(tr.ID, sun.ID, nextSun)
	staffBody.ClientName = "Walk-in"
	staffBody.ClientEmail = "walkin@example.com"
	staffBody.ClientPhone = "555-0199"
	w := executeRequest("POST", "/v1/bookings", staffBody, staffToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	staffBooking := decode[bookingHttp.BookingResponse](t, w)
	assert.Equal(t, "staff-1", staffBooking.CreatedBy)

	w = executeRequest("POST", "/v1/bookings", bookingBody(tr.ID, sunLate.ID, nextSun), clientToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	own := decode[bookingHttp.BookingResponse](t, w)
	assert.Equal(t, "client-1", own.CreatedBy)

	t.Run("Client list ignores other clients' bookings", func(t *testing.T) {
		w := executeRequest("GET", "/v1/bookings?client_email=walkin@example.com", nil, clientToken)
		require.Equal(t, http.StatusOK, w.Code)
		page := decode[response.PageResponse[bookingHttp.BookingResponse]](t, w)
		assert.Equal(t, 0, page.Total)
		assert.Empty(t, page.Items)
		assert.NotContains(t, w.Body.String(), "555-0199")

		w = executeRequest("GET", "/v1/bookings?trainer_id="+tr.ID, nil, clientToken)
		require.Equal(t, http.StatusOK, w.Code)
		page = decode[response.PageResponse[bookingHttp.BookingResponse]](t, w)
		require.Len(t, page.Items, 1)
		assert.Equal(t, own.ID, page.Items[0].ID)
	})

	t.Run("Client cannot read a foreign booking", func(t *testing.T) {
		w := executeRequest("GET", "/v1/bookings/"+staffBooking.ID, nil, clientToken)
		require.Equal(t, http.StatusForbidden, w.Code)
		assert.EqualValues(t, "forbidden", decode[response.ErrorResponse](t, w).Kind)
		assert.NotContains(t, w.Body.String(), "walkin@example.com")

		w = executeRequest("GET", "/v1/bookings/"+own.ID, nil, clientToken)
		assert.Equal(t, http.StatusOK, w.Code)

		otherClient, err := testJWT.GenerateAccessToken("client-2", auth.RoleClient)
		require.NoError(t, err)
		w = executeRequest("GET", "/v1/bookings/"+own.ID, nil, otherClient)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Staff see everything", func(t *testing.T) {
		w := executeRequest("GET", "/v1/bookings/"+own.ID, nil, staffToken)
		assert.Equal(t, http.StatusOK, w.Code)

		w = executeRequest("GET", "/v1/bookings?trainer_id="+tr.ID, nil, staffToken)
		require.Equal(t, http.StatusOK, w.Code)
		page := decode[response.PageResponse[bookingHttp.BookingResponse]](t, w)
		assert.Equal(t, 2, page.Total)
	})
}

func TestAvailabilityPastDateStartsToday(t *testing.T) {
	tr := createTrainer(t, "Past Trainer")
	mon := createSlot(t, tr.ID, "Monday", "06:00", "07:00")

	w := executeRequest("GET", "/v1/trainers/"+tr.ID+"/availability?date=2026-09-01", nil, clientToken)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		AsOf  string `json:"as_of"`
		Items []struct {
			SlotID string `json:"slot_id"`
			Date   string `json:"date"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "2026-10-15", resp.AsOf)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, mon.ID, resp.Items[0].SlotID)
	assert.Equal(t, "2026-10-19", resp.Items[0].Date)

	w = executeRequest("POST", "/v1/bookings", bookingBody(tr.ID, mon.ID, resp.Items[0].Date), clientToken)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestTrainerKillSwitch(t *testing.T) {
	tr := createTrainer(t, "Switch Trainer")
	fri := createSlot(t, tr.ID, "Friday", "07:00", "08:00")
	nextFri := schedule.FormatDate(schedule.NextOccurrence(schedule.Friday, today))

	w := executeRequest("PUT", "/v1/trainers/"+tr.ID+"/availability", trainerHttp.SetAvailabilityRequest{Available: new(bool)}, staffToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[trainerHttp.TrainerResponse](t, w).Available)

	w = executeRequest("GET", "/v1/trainers/"+tr.ID+"/availability", nil, clientToken)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Items []json.RawMessage `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotNil(t, resp.Items)
	assert.Empty(t, resp.Items)

	w = executeRequest("POST", "/v1/bookings", bookingBody(tr.ID, fri.ID, nextFri), clientToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Slots are kept while the trainer is away.
	w = executeRequest("GET", "/v1/trainers/"+tr.ID+"/slots", nil, clientToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), fri.ID)
}

func TestUnknownTrainer(t *testing.T) {
	missing := "00000000-0000-0000-0000-000000000000"

	w := executeRequest("GET", "/v1/trainers/"+missing+"/availability", nil, clientToken)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = executeRequest("POST", "/v1/trainers/"+missing+"/slots", slotHttp.SlotBody{Day: "Monday", StartTime: "09:00", EndTime: "10:00"}, staffToken)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = executeRequest("GET", "/v1/trainers/not-a-uuid", nil, clientToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestConcurrentBookingsOverHTTP(t *testing.T) {
	tr := createTrainer(t, "Race Trainer")
	sat := createSlot(t, tr.ID, "Saturday", "10:00", "11:00")
	date := schedule.FormatDate(schedule.NextOccurrence(schedule.Saturday, today))

	const n = 16
	codes := make([]int, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			codes[i] = executeRequest("POST", "/v1/bookings", bookingBody(tr.ID, sat.ID, date), clientToken).Code
		}()
	}
	wg.Wait()

	created := 0
	for _, code := range codes {
		if code == http.StatusCreated {
			created++
			continue
		}
		assert.Equal(t, http.StatusConflict, code)
	}
	assert.Equal(t, 1, created)
}
