package constants

// Order status
const (
	ORDER_STATUS_PENDING_PAYMENT = "PENDING_PAYMENT"
	ORDER_STATUS_PAID            = "PAID"
)

// Account roles
const (
	ROLE_ADMIN   = "ADMIN"
	ROLE_MANAGER = "MANAGER"
)

// QPay payment row status
const (
	QPAY_PAYMENT_PAID = "PAID"
)

// User-facing messages (Mongolian)
const (
	ERROR_INTERNAL_ERROR  = "Системийн алдаа гарлаа"
	ERROR_CREATE          = "Бүртгэл үүсгэхэд алдаа гарлаа"
	MISSING_LOGIN_INPUT   = "Нэвтрэх мэдээлэл дутуу байна"
	INVALID_USERNAME      = "Хэрэглэгчийн нэр буруу байна"
	INVALID_PASSWORD      = "Нууц үг буруу байна"
	INVALID_EMAIL         = "Имэйл хаяг буруу байна"
	ACCOUNT_NOT_ACTIVE    = "Бүртгэл идэвхгүй байна"
	CAN_NOT_HASH_PASSWORD = "Нууц үг боловсруулахад алдаа гарлаа"

	ORDER_NOT_FOUND      = "Захиалга олдсонгүй"
	ORDER_NOT_YOURS      = "Энэ захиалга таных биш байна"
	ORDER_NOT_IN_TRASH   = "Захиалга хогийн саванд байхгүй байна"
	ORDER_INVALID_INPUT  = "Захиалгын мэдээлэл буруу байна"
	INVOICE_CREATE_ERROR = "Нэхэмжлэх үүсгэхэд алдаа гарлаа. Дахин оролдоно уу"
	LOGIN_REQUIRED       = "Нэвтрэх шаардлагатай"
	ADMIN_ONLY           = "Зөвхөн админ хандах боломжтой"

	DATA_INPUT_IS_NOT_NUMBER = "Параметр тоо байх ёстой"
)

// Guest display name prefix: Зочин#1, Зочин#2, ...
const GUEST_NAME_PREFIX = "Зочин#"
