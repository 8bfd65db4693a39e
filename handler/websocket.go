package handler

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"shop_manager/config"
	"shop_manager/constants"

	"github.com/gofiber/contrib/websocket"
	"github.com/redis/go-redis/v9"
)

const orderPaidChannel = "orders:paid"

var (
	redisOnce   sync.Once
	redisClient *redis.Client

	wsClients = make(map[*websocket.Conn]bool)
	wsMu      sync.Mutex
)

func getRedisClient() *redis.Client {
	redisOnce.Do(func() {
		addr := config.Config("REDIS_ADDR")
		if addr == "" {
			addr = "localhost:6379"
		}
		redisClient = redis.NewClient(&redis.Options{Addr: addr})
	})
	return redisClient
}

// BroadcastOrderPaid publishes a PAID transition for the admin live
// feed. Best-effort: a broken redis must not fail the payment path.
func BroadcastOrderPaid(orderID uint, reference string) {
	payload, _ := json.Marshal(map[string]any{
		"orderId":          orderID,
		"paymentReference": reference,
		"status":           constants.ORDER_STATUS_PAID,
	})
	if err := getRedisClient().Publish(context.Background(), orderPaidChannel, payload).Err(); err != nil {
		log.Printf("order paid broadcast failed: %v", err)
	}
}

// OrderFeedWebsocket streams paid-order events to connected admin
// dashboards via the redis channel.
func OrderFeedWebsocket(c *websocket.Conn) {
	defer func() {
		wsMu.Lock()
		delete(wsClients, c)
		wsMu.Unlock()
		c.Close()
	}()

	wsMu.Lock()
	wsClients[c] = true
	wsMu.Unlock()

	pubsub := getRedisClient().Subscribe(context.Background(), orderPaidChannel)
	defer pubsub.Close()

	channel := pubsub.Channel()

	for msg := range channel {
		payload := []byte(msg.Payload)

		wsMu.Lock()
		for conn := range wsClients {
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				conn.Close()
				delete(wsClients, conn)
			}
		}
		wsMu.Unlock()
	}
}
