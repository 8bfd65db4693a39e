package helper

import (
	"errors"
	"strings"
	"time"

	"shop_manager/constants"
	"shop_manager/database"
	"shop_manager/model"

	"gorm.io/gorm"
)

// GormOrderStore is the Postgres-backed OrderStore / TrashStore.
type GormOrderStore struct {
	DB *gorm.DB
}

func Orders() *GormOrderStore {
	return &GormOrderStore{DB: database.DB}
}

func (s *GormOrderStore) ReferenceExists(reference string) (bool, error) {
	var count int64
	if err := s.DB.Model(&model.Order{}).Where("payment_reference = ?", reference).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *GormOrderStore) CreateOrder(order *model.Order) error {
	if err := s.DB.Create(order).Error; err != nil {
		// unique index on payment_reference lost the race
		if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
			return ErrDuplicateReference
		}
		return err
	}
	return nil
}

func (s *GormOrderStore) GetOrderByID(id uint) (*model.Order, error) {
	var order model.Order
	if err := s.DB.Preload("Items").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (s *GormOrderStore) GetOrderByReference(reference string) (*model.Order, error) {
	var order model.Order
	if err := s.DB.Preload("Items").Where("payment_reference = ?", reference).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (s *GormOrderStore) GetOrderByInvoiceID(invoiceID string) (*model.Order, error) {
	var order model.Order
	if err := s.DB.Preload("Items").Where("qpay_invoice_id = ?", invoiceID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (s *GormOrderStore) SaveInvoice(orderID uint, invoiceID, qrText string) error {
	result := s.DB.Model(&model.Order{}).Where("id = ?", orderID).Updates(map[string]any{
		"qpay_invoice_id": invoiceID,
		"qpay_qr_text":    qrText,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// MarkPaid is conditioned on the current status so racing triggers
// (webhook, poll, redirect, admin) collapse into one transition.
func (s *GormOrderStore) MarkPaid(orderID uint) (bool, error) {
	result := s.DB.Model(&model.Order{}).
		Where("id = ? AND status = ?", orderID, constants.ORDER_STATUS_PENDING_PAYMENT).
		Updates(map[string]any{
			"status":  constants.ORDER_STATUS_PAID,
			"paid_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (s *GormOrderStore) SetDeletedAt(orderID uint, deletedAt *time.Time) error {
	result := s.DB.Model(&model.Order{}).Where("id = ?", orderID).Update("deleted_at", deletedAt)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (s *GormOrderStore) DeleteOrder(orderID uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", orderID).Delete(&model.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Order{}, orderID).Error
	})
}

// PurgeTrashedBefore removes orders trashed before the cutoff. Deleting
// rows another run already removed affects zero rows, so concurrent or
// repeated purges are harmless.
func (s *GormOrderStore) PurgeTrashedBefore(cutoff time.Time) (int64, error) {
	var purged int64
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id IN (SELECT id FROM orders WHERE deleted_at IS NOT NULL AND deleted_at < ?)", cutoff).
			Delete(&model.OrderItem{}).Error; err != nil {
			return err
		}
		result := tx.Where("deleted_at IS NOT NULL AND deleted_at < ?", cutoff).Delete(&model.Order{})
		if result.Error != nil {
			return result.Error
		}
		purged = result.RowsAffected
		return nil
	})
	return purged, err
}
