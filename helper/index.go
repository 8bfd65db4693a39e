package helper

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"shop_manager/constants"
	"shop_manager/database"
	"shop_manager/model"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var JwtSecret = []byte(os.Getenv("JWT_SECRET"))

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

func GetUserByUsername(u string) (*model.Account, error) {
	db := database.DB
	var account model.Account
	if err := db.Where(&model.Account{Username: u}).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func GetCustomerByEmail(e string) (*model.Customer, error) {
	db := database.DB
	var customer model.Customer
	if err := db.Where("email = ?", e).First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &customer, nil
}

func GenerateAccessToken(tokenClaim model.TokenClaim) (string, error) {
	token := jwt.New(jwt.SigningMethodHS256)

	claims := token.Claims.(jwt.MapClaims)
	claims["username"] = tokenClaim.Username
	claims["customerId"] = tokenClaim.CustomerId
	claims["accountId"] = tokenClaim.AccountId
	claims["role"] = tokenClaim.Role
	claims["exp"] = time.Now().Add(time.Minute * 60).Unix()

	t, err := token.SignedString(JwtSecret)
	return t, err
}

func GenerateRefreshToken(tokenClaim model.TokenClaim) (string, error) {
	token := jwt.New(jwt.SigningMethodHS256)

	claims := token.Claims.(jwt.MapClaims)
	claims["username"] = tokenClaim.Username
	claims["customerId"] = tokenClaim.CustomerId
	claims["accountId"] = tokenClaim.AccountId
	claims["exp"] = time.Now().Add(time.Hour * 24 * 7).Unix()

	t, err := token.SignedString(JwtSecret)
	return t, err
}

func ParseToken(tokenString string) (*jwt.Token, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return JwtSecret, nil
	})

	return token, err
}

// GetInfoAccountFromToken resolves the staff account behind a Protected
// request. Returns a zero claim when the token does not map to an account.
func GetInfoAccountFromToken(c *fiber.Ctx) (model.TokenClaim, bool, bool) {
	u := c.Locals("user")
	token, ok := u.(*jwt.Token)
	if !ok || token == nil {
		return model.TokenClaim{}, false, false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return model.TokenClaim{}, false, false
	}
	accountIdFloat, ok := claims["accountId"].(float64)
	if !ok || accountIdFloat == 0 {
		return model.TokenClaim{}, false, false
	}

	var account model.Account
	db := database.DB
	if err := db.First(&account, uint(accountIdFloat)).Error; err != nil {
		log.Printf("account not found: id=%d err=%v", uint(accountIdFloat), err)
		return model.TokenClaim{}, false, false
	}

	accountInfo := model.TokenClaim{
		AccountId: account.ID,
		Username:  account.Username,
		Role:      account.Role,
	}

	return accountInfo,
		account.Role == constants.ROLE_ADMIN,
		account.Role == constants.ROLE_MANAGER
}

// GetInfoCustomerFromToken resolves the shopper (registered or guest)
// behind an OptionalJWT request. Falls back to a guest claim.
func GetInfoCustomerFromToken(c *fiber.Ctx) (model.TokenClaim, model.Customer) {
	var emptyCustomer model.Customer
	var guestClaim = model.TokenClaim{
		CustomerId: 0,
		Username:   "",
	}

	u := c.Locals("user")
	if u == nil {
		return guestClaim, emptyCustomer
	}

	userToken, ok := u.(*jwt.Token)
	if !ok || userToken == nil {
		return guestClaim, emptyCustomer
	}

	claims, ok := userToken.Claims.(jwt.MapClaims)
	if !ok {
		return guestClaim, emptyCustomer
	}

	customerIdFloat, _ := claims["customerId"].(float64)
	if customerIdFloat == 0 {
		return guestClaim, emptyCustomer
	}

	username, _ := claims["username"].(string)

	tokenClaim := model.TokenClaim{
		CustomerId: uint(customerIdFloat),
		Username:   username,
	}

	var customer model.Customer
	db := database.DB
	if err := db.First(&customer, tokenClaim.CustomerId).Error; err != nil {
		log.Printf("customer not found (id=%d): %v", tokenClaim.CustomerId, err)
		return guestClaim, emptyCustomer
	}

	c.Locals("customer", &customer)

	return tokenClaim, customer
}
