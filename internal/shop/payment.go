package shop

import "time"

// Rekening statis toko; di-snapshot ke order saat dibuat supaya invoice
// lama tetap menampilkan rekening yang berlaku waktu itu.
const (
	shopBankName      = "BCA"
	shopAccountNumber = "1234567890"
	shopAccountName   = "Paskal Shop"

	instructionsTransfer = "Transfer tepat sesuai nominal yang tertera dan upload bukti pembayaran."
	instructionsEwallet  = "Transfer ke nomor 0812-3456-7890 (OVO/DANA/GoPay) atas nama Paskal Shop dan upload screenshot bukti pembayaran."
	instructionsCOD      = "Pembayaran dilakukan saat barang diterima. Siapkan uang pas sesuai total pembayaran."
)

// PaymentDueWindow: batas upload bukti utk transfer/ewallet.
const PaymentDueWindow = 24 * time.Hour

type PaymentInfo struct {
	Instructions  string
	BankName      string
	AccountNumber string
	AccountName   string
	DueDate       *time.Time
}

// PaymentInfoFor mengisi snapshot instruksi per metode. COD tidak punya
// due date.
func PaymentInfoFor(method PaymentMethod, createdAt time.Time) PaymentInfo {
	switch method {
	case MethodTransfer:
		due := createdAt.Add(PaymentDueWindow)
		return PaymentInfo{
			Instructions:  instructionsTransfer,
			BankName:      shopBankName,
			AccountNumber: shopAccountNumber,
			AccountName:   shopAccountName,
			DueDate:       &due,
		}
	case MethodEwallet:
		due := createdAt.Add(PaymentDueWindow)
		return PaymentInfo{
			Instructions: instructionsEwallet,
			AccountName:  shopAccountName,
			DueDate:      &due,
		}
	case MethodCOD:
		return PaymentInfo{Instructions: instructionsCOD}
	}
	return PaymentInfo{}
}
