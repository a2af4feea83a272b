package departure

import (
	"errors"
	"testing"
	"time"
)

var (
	departs = time.Date(2024, time.June, 3, 8, 30, 0, 0, time.UTC)
	arrives = time.Date(2024, time.June, 3, 10, 0, 0, 0, time.UTC)
)

func TestNew(t *testing.T) {
	d, err := New("D001", "S001", "F001", "R001", departs, arrives)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if d.Status != Scheduled {
		t.Errorf("status = %v, want Scheduled", d.Status)
	}
	if !d.Date.Equal(DateOf(departs)) {
		t.Errorf("date = %v, want %v", d.Date, DateOf(departs))
	}
	if d.BookedCount() != 0 {
		t.Errorf("booked count = %d, want 0", d.BookedCount())
	}
}

func TestNewTimeOrder(t *testing.T) {
	if _, err := New("D001", "S001", "F001", "R001", departs, departs); !errors.Is(err, ErrTimeOrder) {
		t.Errorf("equal times: err = %v, want ErrTimeOrder", err)
	}
	if _, err := New("D001", "S001", "F001", "R001", arrives, departs); !errors.Is(err, ErrTimeOrder) {
		t.Errorf("reversed times: err = %v, want ErrTimeOrder", err)
	}
}

func TestBookingLifecycle(t *testing.T) {
	d, err := New("D001", "S001", "F001", "R001", departs, arrives)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	const capacity = 2

	if err := d.Attach("T-A", capacity); err != nil {
		t.Fatalf("attach A: %v", err)
	}
	if err := d.Attach("T-B", capacity); err != nil {
		t.Fatalf("attach B: %v", err)
	}
	if err := d.Attach("T-C", capacity); !errors.Is(err, ErrOverBooked) {
		t.Fatalf("attach C: err = %v, want ErrOverBooked", err)
	}
	if d.BookedCount() != 2 {
		t.Fatalf("booked count = %d, want 2", d.BookedCount())
	}

	released, err := d.Cancel()
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if len(released) != 2 {
		t.Errorf("released %d bookings, want 2", len(released))
	}
	if d.BookedCount() != 0 {
		t.Errorf("booked count after cancel = %d, want 0", d.BookedCount())
	}
	if d.Status != Cancelled {
		t.Errorf("status = %v, want Cancelled", d.Status)
	}

	if err := d.Attach("T-D", capacity); !errors.Is(err, ErrFinal) {
		t.Errorf("attach after cancel: err = %v, want ErrFinal", err)
	}
}

func TestAttachDuplicate(t *testing.T) {
	d, _ := New("D001", "S001", "F001", "R001", departs, arrives)
	if err := d.Attach("T-A", 10); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if err := d.Attach("T-A", 10); !errors.Is(err, ErrAlreadyBooked) {
		t.Errorf("err = %v, want ErrAlreadyBooked", err)
	}
	if d.BookedCount() != 1 {
		t.Errorf("booked count = %d, want 1", d.BookedCount())
	}
}

func TestDetach(t *testing.T) {
	d, _ := New("D001", "S001", "F001", "R001", departs, arrives)
	if err := d.Detach("T-A"); !errors.Is(err, ErrNotBooked) {
		t.Errorf("detach unbooked: err = %v, want ErrNotBooked", err)
	}
	d.Attach("T-A", 10)
	d.Attach("T-B", 10)
	if err := d.Detach("T-A"); err != nil {
		t.Fatalf("detach: %v", err)
	}
	if d.HasBooking("T-A") {
		t.Error("booking still present after detach")
	}
	if !d.HasBooking("T-B") {
		t.Error("unrelated booking removed by detach")
	}
}

func TestPushBack(t *testing.T) {
	d, _ := New("D001", "S001", "F001", "R001", departs, arrives)

	if err := d.PushBack(0); !errors.Is(err, ErrInvalidDelay) {
		t.Errorf("zero minutes: err = %v, want ErrInvalidDelay", err)
	}
	if err := d.PushBack(-15); !errors.Is(err, ErrInvalidDelay) {
		t.Errorf("negative minutes: err = %v, want ErrInvalidDelay", err)
	}

	if err := d.PushBack(30); err != nil {
		t.Fatalf("push back: %v", err)
	}
	if err := d.PushBack(15); err != nil {
		t.Fatalf("second push back: %v", err)
	}

	if d.DelayMinutes != 45 {
		t.Errorf("delay = %d minutes, want 45", d.DelayMinutes)
	}
	if d.Status != Delayed {
		t.Errorf("status = %v, want Delayed", d.Status)
	}
	if want := departs.Add(45 * time.Minute); !d.DepartureTime.Equal(want) {
		t.Errorf("departure time = %v, want %v", d.DepartureTime, want)
	}
	if want := arrives.Add(45 * time.Minute); !d.ArrivalTime.Equal(want) {
		t.Errorf("arrival time = %v, want %v", d.ArrivalTime, want)
	}
	if !d.Date.Equal(DateOf(departs)) {
		t.Errorf("date changed by delay: %v", d.Date)
	}
}

func TestFinalStatusesAbsorbing(t *testing.T) {
	for _, final := range []Status{Completed, Cancelled} {
		d, _ := New("D001", "S001", "F001", "R001", departs, arrives)
		d.Status = final

		if err := d.PushBack(10); !errors.Is(err, ErrFinal) {
			t.Errorf("%v: push back err = %v, want ErrFinal", final, err)
		}
		if _, err := d.Cancel(); !errors.Is(err, ErrFinal) {
			t.Errorf("%v: cancel err = %v, want ErrFinal", final, err)
		}
		if err := d.Complete(); !errors.Is(err, ErrFinal) {
			t.Errorf("%v: complete err = %v, want ErrFinal", final, err)
		}
		if d.Status != final {
			t.Errorf("status changed from %v to %v", final, d.Status)
		}
	}
}

func TestComplete(t *testing.T) {
	d, _ := New("D001", "S001", "F001", "R001", departs, arrives)
	d.Attach("T-A", 10)
	if err := d.Complete(); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if d.Status != Completed {
		t.Errorf("status = %v, want Completed", d.Status)
	}
	if d.BookedCount() != 1 {
		t.Errorf("bookings released by complete, count = %d", d.BookedCount())
	}
}

func TestDateOf(t *testing.T) {
	got := DateOf(time.Date(2024, time.June, 3, 23, 59, 59, 1, time.UTC))
	want := time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("DateOf = %v, want %v", got, want)
	}
}
