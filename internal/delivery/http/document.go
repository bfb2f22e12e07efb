package http

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/frontandrew/insura/internal/domain"
	"github.com/google/uuid"
)

// documentTTL - срок жизни одноразовой ссылки на документ
const documentTTL = 5 * time.Minute

type issuedDocument struct {
	policyID  int64
	expiresAt time.Time
}

// DocumentVault выдает одноразовые токены на скачивание PDF.
// Токен гасится при первом обращении или по истечении срока
type DocumentVault struct {
	mu     sync.Mutex
	tokens map[string]issuedDocument
}

// NewDocumentVault создает хранилище одноразовых токенов
func NewDocumentVault() *DocumentVault {
	return &DocumentVault{
		tokens: make(map[string]issuedDocument),
	}
}

// Issue выпускает токен на скачивание документа полиса
func (v *DocumentVault) Issue(policyID int64) string {
	v.mu.Lock()
	defer v.mu.Unlock()

	token := uuid.NewString()
	v.tokens[token] = issuedDocument{
		policyID:  policyID,
		expiresAt: time.Now().Add(documentTTL),
	}
	return token
}

// Redeem гасит токен и возвращает ID полиса
func (v *DocumentVault) Redeem(token string) (int64, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	doc, ok := v.tokens[token]
	if !ok {
		return 0, false
	}
	delete(v.tokens, token)

	if time.Now().After(doc.expiresAt) {
		return 0, false
	}
	return doc.policyID, true
}

// renderPolicyPDF строит минимальный однострочный PDF с номером полиса
// и именем страхователя
func renderPolicyPDF(policy *domain.Policy) []byte {
	text := fmt.Sprintf("Policy %s - %s", policy.PolicyNo, policy.PolicyHolderName)
	text = strings.NewReplacer("(", `\(`, ")", `\)`, `\`, `\\`).Replace(text)

	stream := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)

	var b strings.Builder
	b.WriteString("%PDF-1.4\n")

	offsets := make([]int, 0, 5)
	writeObj := func(body string) {
		offsets = append(offsets, b.Len())
		b.WriteString(body)
	}

	writeObj("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	writeObj("2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n")
	writeObj("3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>\nendobj\n")
	writeObj(fmt.Sprintf("4 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n", len(stream), stream))
	writeObj("5 0 obj\n<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>\nendobj\n")

	xrefOffset := b.Len()
	b.WriteString(fmt.Sprintf("xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1))
	for _, offset := range offsets {
		b.WriteString(fmt.Sprintf("%010d 00000 n \n", offset))
	}
	b.WriteString(fmt.Sprintf("trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xrefOffset))

	return []byte(b.String())
}
