package helper

import (
	"log"
	"time"

	"shop_manager/model"

	"github.com/go-co-op/gocron/v2"
)

// TrashRetention is how long a trashed order survives before CleanTrash
// purges it.
const TrashRetention = 30 * 24 * time.Hour

// TrashStore is the persistence surface of the trash lifecycle.
type TrashStore interface {
	GetOrderByID(id uint) (*model.Order, error)
	SetDeletedAt(orderID uint, deletedAt *time.Time) error
	DeleteOrder(orderID uint) error
	PurgeTrashedBefore(cutoff time.Time) (int64, error)
}

// MoveOrderToTrash soft-deletes: the order keeps its status and items,
// only deleted_at is stamped. Reversible via RestoreOrderFromTrash.
func MoveOrderToTrash(store TrashStore, orderID uint) error {
	if _, err := store.GetOrderByID(orderID); err != nil {
		return err
	}
	now := time.Now()
	return store.SetDeletedAt(orderID, &now)
}

func RestoreOrderFromTrash(store TrashStore, orderID uint) error {
	if _, err := store.GetOrderByID(orderID); err != nil {
		return err
	}
	return store.SetDeletedAt(orderID, nil)
}

// DeleteOrderPermanently hard-deletes a trashed order. Active orders are
// refused: staff must trash first, then purge.
func DeleteOrderPermanently(store TrashStore, orderID uint) error {
	order, err := store.GetOrderByID(orderID)
	if err != nil {
		return err
	}
	if order.DeletedAt == nil {
		return ErrNotTrashed
	}
	return store.DeleteOrder(orderID)
}

// CleanTrash purges every order trashed longer than TrashRetention ago.
func CleanTrash(store TrashStore) (int64, error) {
	return store.PurgeTrashedBefore(time.Now().Add(-TrashRetention))
}

var trashScheduler gocron.Scheduler

func runTrashCleanup() {
	log.Println("[CRON] trash cleanup triggered")
	purged, err := CleanTrash(Orders())
	if err != nil {
		log.Printf("trash cleanup failed: %v", err)
		return
	}
	if purged > 0 {
		log.Printf("trash cleanup purged %d orders", purged)
	}
}

func StartTrashScheduler() {
	s, err := gocron.NewScheduler(
		gocron.WithLocation(time.FixedZone("ULAT", 8*3600)),
	)
	if err != nil {
		log.Fatal(err)
	}

	trashScheduler = s

	_, err = s.NewJob(
		gocron.DailyJob(
			1,
			gocron.NewAtTimes(
				gocron.NewAtTime(3, 30, 0),
			),
		),
		gocron.NewTask(runTrashCleanup),
	)
	if err != nil {
		log.Fatal(err)
	}

	s.Start()
	log.Println("trash cleanup scheduler started (03:30 ULAT)")
}

func StopTrashScheduler() {
	if trashScheduler != nil {
		trashScheduler.Shutdown()
	}
}
