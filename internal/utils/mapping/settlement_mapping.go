package mapping

import (
	"fmt"

	"github.com/SscSPs/splitsettle/internal/apperrors"
	"github.com/SscSPs/splitsettle/internal/core/domain"
	"github.com/SscSPs/splitsettle/internal/models"
)

// ToDomainSettlement converts a settlement row. An unknown stored status is reported
// as a dependency error rather than guessed.
func ToDomainSettlement(m models.Settlement) (domain.Settlement, error) {
	status, err := domain.ParseSettlementStatus(m.Status)
	if err != nil {
		return domain.Settlement{}, fmt.Errorf("%w: settlement %s: %v", apperrors.ErrDependency, m.SettlementID, err)
	}
	s := domain.Settlement{
		SettlementID: m.SettlementID,
		FromUser:     m.FromUser,
		ToUser:       m.ToUser,
		Amount:       m.Amount,
		GroupID:      m.GroupID,
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
	if m.Notes != nil {
		s.Notes = *m.Notes
	}
	return domain.RestoreSettlement(s, status), nil
}

// ToDomainSettlementSlice converts settlement rows, failing on the first bad row.
func ToDomainSettlementSlice(ms []models.Settlement) ([]domain.Settlement, error) {
	ds := make([]domain.Settlement, 0, len(ms))
	for _, m := range ms {
		d, err := ToDomainSettlement(m)
		if err != nil {
			return nil, err
		}
		ds = append(ds, d)
	}
	return ds, nil
}

// ToModelSettlement converts a domain settlement to a row.
func ToModelSettlement(d domain.Settlement) models.Settlement {
	m := models.Settlement{
		SettlementID: d.SettlementID,
		FromUser:     d.FromUser,
		ToUser:       d.ToUser,
		Amount:       d.Amount,
		GroupID:      d.GroupID,
		Status:       string(d.Status()),
		AuditFields:  ToModelAuditFields(d.AuditFields),
	}
	if d.Notes != "" {
		notes := d.Notes
		m.Notes = &notes
	}
	return m
}
