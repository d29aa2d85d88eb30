package mail

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"github.com/paskalshop/paskal-shop/internal/shop"
)

// Mailer mengirim email notifikasi ke pelanggan. Tanpa kredensial SMTP
// mailer jalan dalam mode log-only supaya alur order tidak pernah gagal
// gara-gara email.
type Mailer struct {
	log    *logrus.Logger
	dialer *gomail.Dialer
	from   string
}

func New(log *logrus.Logger, host string, port int, user, pass, from string) *Mailer {
	m := &Mailer{log: log, from: from}
	if user == "" || pass == "" {
		log.Warn("SMTP not configured, emails disabled")
		return m
	}
	m.dialer = gomail.NewDialer(host, port, user, pass)
	return m
}

func (m *Mailer) send(to, subject, body string) error {
	if m.dialer == nil {
		m.log.WithFields(logrus.Fields{"to": to, "subject": subject}).Info("email skipped (SMTP disabled)")
		return nil
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)
	return m.dialer.DialAndSend(msg)
}

func rupiah(amount int64) string {
	return fmt.Sprintf("Rp %d", amount)
}

func (m *Mailer) SendOrderCreated(p shop.OrderCreatedPayload) error {
	due := ""
	if p.PaymentDueDate != nil {
		due = fmt.Sprintf("<p>Batas pembayaran: %s</p>", p.PaymentDueDate.Format("02 Jan 2006 15:04 MST"))
	}
	body := fmt.Sprintf(`
		<h2>Terima kasih, %s!</h2>
		<p>Pesanan <b>%s</b> sudah kami terima dengan total %s (metode: %s).</p>
		%s
		<p>Silakan selesaikan pembayaran lalu upload bukti di halaman pembayaran.</p>
		<br>
		<p>Salam,<br>Paskal Shop</p>
	`, p.CustomerName, p.OrderID, rupiah(p.TotalAmount), p.PaymentMethod, due)
	return m.send(p.CustomerEmail, fmt.Sprintf("Pesanan %s diterima - Paskal Shop", p.OrderID), body)
}

func (m *Mailer) SendPaymentConfirmed(p shop.PaymentReviewedPayload) error {
	body := fmt.Sprintf(`
		<h2>Pembayaran dikonfirmasi</h2>
		<p>Halo %s, pembayaran untuk pesanan <b>%s</b> sudah kami konfirmasi dan pesanan sedang diproses.</p>
		<p>Invoice bisa diakses lewat halaman pesanan Anda.</p>
		<br>
		<p>Salam,<br>Paskal Shop</p>
	`, p.CustomerName, p.OrderID)
	return m.send(p.CustomerEmail, fmt.Sprintf("Pembayaran pesanan %s dikonfirmasi", p.OrderID), body)
}

func (m *Mailer) SendPaymentRejected(p shop.PaymentReviewedPayload) error {
	notes := ""
	if p.Notes != "" {
		notes = fmt.Sprintf("<p>Catatan admin: %s</p>", p.Notes)
	}
	body := fmt.Sprintf(`
		<h2>Bukti pembayaran ditolak</h2>
		<p>Halo %s, bukti pembayaran untuk pesanan <b>%s</b> belum bisa kami terima.</p>
		%s
		<p>Silakan upload ulang bukti pembayaran yang sesuai.</p>
		<br>
		<p>Salam,<br>Paskal Shop</p>
	`, p.CustomerName, p.OrderID, notes)
	return m.send(p.CustomerEmail, fmt.Sprintf("Bukti pembayaran pesanan %s ditolak", p.OrderID), body)
}
