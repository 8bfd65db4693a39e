package utils

import (
	"bytes"
	"html/template"
	"log"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"
)

type OrderPaidEmailData struct {
	PaymentReference string
	CustomerName     string
	TotalAmount      float64
}

// SendOrderPaidEmail sends the payment confirmation (async, best-effort:
// the payment flow never waits on SMTP).
func SendOrderPaidEmail(to string, data OrderPaidEmailData) {
	go func() {
		tmplPath := "templates/order_paid.html"
		tmpl, err := template.ParseFiles(tmplPath)
		if err != nil {
			log.Printf("email template load failed: %v", err)
			return
		}

		var body bytes.Buffer
		if err := tmpl.Execute(&body, data); err != nil {
			log.Printf("email template render failed: %v", err)
			return
		}

		host := os.Getenv("SMTP_HOST")
		portStr := os.Getenv("SMTP_PORT")
		username := os.Getenv("SMTP_USERNAME")
		password := os.Getenv("SMTP_PASSWORD")
		from := os.Getenv("SMTP_FROM")

		port, _ := strconv.Atoi(portStr)

		m := gomail.NewMessage()
		m.SetHeader("From", from)
		m.SetHeader("To", to)
		m.SetHeader("Subject", "Төлбөр баталгаажлаа - Захиалга "+data.PaymentReference)
		m.SetBody("text/html", body.String())

		d := gomail.NewDialer(host, port, username, password)
		if err := d.DialAndSend(m); err != nil {
			log.Printf("email send failed for %s: %v", to, err)
		}
	}()
}
