// Package promptpay builds EMVCo payloads for the Thai PromptPay QR rail.
// Only the payload and a reference id are produced here; rendering the QR
// image is left to the client.
package promptpay

import (
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/oklog/ulid/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	idPayloadFormat      = "00"
	idPointOfInitiation  = "01"
	idMerchantAccount    = "29"
	idCurrency           = "53"
	idAmount             = "54"
	idCountry            = "58"
	idCRC                = "63"
	payloadFormatEMV     = "01"
	initiationDynamic    = "12"
	merchantAID          = "A000000677010111"
	currencyTHB          = "764"
	countryTH            = "TH"
	proxyTypePhone       = "01"
	proxyTypeNationalID  = "02"
)

type Request struct {
	Payload     string  `json:"payload"`
	Amount      float64 `json:"amount"`
	PromptPayID string  `json:"promptPayId"`
	ReferenceID string  `json:"referenceId"`
}

// Generate builds a dynamic PromptPay payload for the given amount and a
// fresh PP reference for reconciliation.
func Generate(promptPayID string, amount float64) Request {
	return Request{
		Payload:     BuildPayload(promptPayID, amount),
		Amount:      amount,
		PromptPayID: promptPayID,
		ReferenceID: NewReference(),
	}
}

// NewReference returns "PP" + the 10-character entropy tail of a ULID.
func NewReference() string {
	id := ulid.Make().String()
	return "PP" + id[len(id)-10:]
}

// BuildPayload assembles the EMVCo TLV string with CRC-16 suffix.
func BuildPayload(target string, amount float64) string {
	var b strings.Builder
	b.WriteString(tlv(idPayloadFormat, payloadFormatEMV))
	b.WriteString(tlv(idPointOfInitiation, initiationDynamic))

	merchant := tlv("00", merchantAID) + tlv(proxyType(target), formatTarget(target))
	b.WriteString(tlv(idMerchantAccount, merchant))

	b.WriteString(tlv(idCurrency, currencyTHB))
	if amount > 0 {
		b.WriteString(tlv(idAmount, fmt.Sprintf("%.2f", amount)))
	}
	b.WriteString(tlv(idCountry, countryTH))

	payload := b.String() + idCRC + "04"
	return payload + crc16(payload)
}

func tlv(id, value string) string {
	return fmt.Sprintf("%s%02d%s", id, len(value), value)
}

func proxyType(target string) string {
	if len(digitsOnly(target)) >= 13 {
		return proxyTypeNationalID
	}
	return proxyTypePhone
}

// formatTarget converts a local phone number to the 0066 form PromptPay
// expects; national ids pass through untouched.
func formatTarget(target string) string {
	d := digitsOnly(target)
	if len(d) >= 13 {
		return d
	}
	d = strings.TrimPrefix(d, "0")
	return "00" + "66" + d
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// crc16 is CCITT-FALSE (poly 0x1021, init 0xFFFF), uppercase hex.
func crc16(s string) string {
	crc := uint16(0xFFFF)
	for _, c := range []byte(s) {
		crc ^= uint16(c) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return fmt.Sprintf("%04X", crc)
}

// AddRandomSatang perturbs an integer amount with 0.01-0.99 THB so two
// concurrent requests for the same round amount stay distinguishable on the
// bank statement. Amounts that already carry a fraction are returned as is.
func AddRandomSatang(amount float64) float64 {
	if math.Mod(amount, 1) != 0 {
		return amount
	}
	satang := float64(rand.Intn(99)+1) / 100
	return math.Round((amount+satang)*100) / 100
}

var thbPrinter = message.NewPrinter(language.English)

// FormatTHB renders an amount as "฿1,234.56".
func FormatTHB(amount float64) string {
	return thbPrinter.Sprintf("฿%.2f", amount)
}
