package services

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"
)

const defaultFromAddress = "mail.collabcore@example.com"

func SendVerificationEmail(email, username, verificationURL string) error {
	body := fmt.Sprintf(
		"Hi %s,\n\n"+
			"Welcome to CollabCore! We're excited to have you on board.\n\n"+
			"To get started with your account, please open the link below to verify your email address:\n\n"+
			"%s\n\n"+
			"Need help or have questions? Just reply to this email, we're always happy to help.\n",
		username, verificationURL)

	return sendEmail(email, "Verify Your Email for CollabCore", body)
}

func SendPasswordResetEmail(email, username, resetURL string) error {
	body := fmt.Sprintf(
		"Hi %s,\n\n"+
			"You have requested to reset your password. Please open the link below to proceed:\n\n"+
			"%s\n\n"+
			"If you did not request this, you can safely ignore this email.\n",
		username, resetURL)

	return sendEmail(email, "Reset Your Password for CollabCore", body)
}

func sendEmail(to, subject, body string) error {
	host := os.Getenv("SMTP_HOST")

	if host == "" {
		return fmt.Errorf("SMTP_HOST is not configured")
	}

	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))

	if err != nil {
		return fmt.Errorf("invalid SMTP_PORT: %w", err)
	}

	from := os.Getenv("SMTP_FROM")

	if from == "" {
		from = defaultFromAddress
	}

	message := gomail.NewMessage()
	message.SetHeader("From", from)
	message.SetHeader("To", to)
	message.SetHeader("Subject", subject)
	message.SetBody("text/plain", body)

	dialer := gomail.NewDialer(host, port, os.Getenv("SMTP_USER"), os.Getenv("SMTP_PASS"))

	return dialer.DialAndSend(message)
}
