package utils

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"
)

// SendOrderConfirmation sends the order confirmation email after a
// payment has been verified as succeeded. Failures are logged by the
// caller; they never affect payment state.
func SendOrderConfirmation(to string, orderID uint, total float64) error {
	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		port = 587
	}

	m := gomail.NewMessage()
	m.SetHeader("From", os.Getenv("SMTP_FROM"))
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("Your ShopNest order #%d is confirmed", orderID))

	body := fmt.Sprintf(`
		<h2>Thank you for your order!</h2>
		<p>Your payment has been received and order <strong>#%d</strong> is confirmed.</p>
		<p>Order total: <strong>%.2f</strong></p>
		<p>You can view your order and download the invoice from your account.</p>
	`, orderID, total)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(os.Getenv("SMTP_HOST"), port, os.Getenv("SMTP_USERNAME"), os.Getenv("SMTP_PASSWORD"))
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %v", err)
	}
	return nil
}
