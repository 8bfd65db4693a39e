package handler

import (
	"errors"
	"strconv"

	"shop_manager/constants"
	"shop_manager/database"
	"shop_manager/helper"
	"shop_manager/model"
	"shop_manager/utils"

	"github.com/gofiber/fiber/v2"
)

func orderIdFromParams(c *fiber.Ctx) (uint, error) {
	id64, err := strconv.ParseUint(c.Params("orderId"), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id64), nil
}

// GetOrders lists active (non-trashed) orders for the admin console.
func GetOrders(c *fiber.Ctx) error {
	var filter model.FilterOrder
	if err := c.QueryParser(&filter); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ORDER_INVALID_INPUT, err)
	}

	query := database.DB.Model(&model.Order{}).Preload("Items").Where("deleted_at IS NULL")
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.SearchKey != "" {
		search := "%" + filter.SearchKey + "%"
		query = query.Where("payment_reference ILIKE ? OR customer_name ILIKE ? OR phone_number ILIKE ?", search, search, search)
	}

	var totalCount int64
	query.Count(&totalCount)

	var orders []model.Order
	if err := utils.ApplyPagination(query, filter.Limit, filter.Page).
		Order("created_at desc").
		Find(&orders).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, model.ResponseCustom{
		Rows:       orders,
		Limit:      filter.Limit,
		Page:       filter.Page,
		TotalCount: totalCount,
	})
}

// GetTrashedOrders lists the trash view.
func GetTrashedOrders(c *fiber.Ctx) error {
	var filter model.FilterOrder
	if err := c.QueryParser(&filter); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ORDER_INVALID_INPUT, err)
	}

	query := database.DB.Model(&model.Order{}).Preload("Items").Where("deleted_at IS NOT NULL")

	var totalCount int64
	query.Count(&totalCount)

	var orders []model.Order
	if err := utils.ApplyPagination(query, filter.Limit, filter.Page).
		Order("deleted_at desc").
		Find(&orders).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, model.ResponseCustom{
		Rows:       orders,
		Limit:      filter.Limit,
		Page:       filter.Page,
		TotalCount: totalCount,
	})
}

// MarkOrderPaid is the manual override for bank-transfer or support
// cases. Same idempotent primitive as the gateway triggers.
func MarkOrderPaid(c *fiber.Ctx) error {
	orderId, err := orderIdFromParams(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.DATA_INPUT_IS_NOT_NUMBER, err)
	}

	store := helper.Orders()
	order, err := store.GetOrderByID(orderId)
	if err != nil {
		if errors.Is(err, helper.ErrOrderNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, constants.ORDER_NOT_FOUND, err)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}

	changed, err := helper.MarkOrderPaid(store, orderId)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}
	if changed {
		order.Status = constants.ORDER_STATUS_PAID
		afterOrderPaid(order)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{
		"orderId": orderId,
		"status":  constants.ORDER_STATUS_PAID,
		"changed": changed,
	})
}

func MoveOrderToTrash(c *fiber.Ctx) error {
	orderId, err := orderIdFromParams(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.DATA_INPUT_IS_NOT_NUMBER, err)
	}

	if err := helper.MoveOrderToTrash(helper.Orders(), orderId); err != nil {
		if errors.Is(err, helper.ErrOrderNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, constants.ORDER_NOT_FOUND, err)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{"orderId": orderId})
}

func RestoreOrderFromTrash(c *fiber.Ctx) error {
	orderId, err := orderIdFromParams(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.DATA_INPUT_IS_NOT_NUMBER, err)
	}

	if err := helper.RestoreOrderFromTrash(helper.Orders(), orderId); err != nil {
		if errors.Is(err, helper.ErrOrderNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, constants.ORDER_NOT_FOUND, err)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{"orderId": orderId})
}

func DeleteOrderPermanently(c *fiber.Ctx) error {
	orderId, err := orderIdFromParams(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.DATA_INPUT_IS_NOT_NUMBER, err)
	}

	if err := helper.DeleteOrderPermanently(helper.Orders(), orderId); err != nil {
		if errors.Is(err, helper.ErrOrderNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, constants.ORDER_NOT_FOUND, err)
		}
		if errors.Is(err, helper.ErrNotTrashed) {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ORDER_NOT_IN_TRASH, err)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{"orderId": orderId})
}

// CleanTrash purges everything past retention, same job the nightly
// scheduler runs.
func CleanTrash(c *fiber.Ctx) error {
	purged, err := helper.CleanTrash(helper.Orders())
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{"purged": purged})
}
