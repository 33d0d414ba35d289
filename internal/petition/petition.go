package petition

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/danielpatrickdp/cleanslate/go-screener/internal/crecord"
	"github.com/google/uuid"
)

// Kind is the form of relief a petition asks for.
type Kind string

const (
	KindExpungement Kind = "expungement"
	KindSealing     Kind = "sealing"
)

// Type classifies an expungement. It only helps the reader understand how
// much of the case is covered.
type Type string

const (
	TypeFull    Type = "Full Expungement"
	TypePartial Type = "Partial Expungement"
)

// Procedure is the rule of criminal procedure a petition is filed under.
type Procedure string

const (
	ProcedureSummary    Procedure = "§ 490"
	ProcedureNonsummary Procedure = "§ 790"
)

// namespace roots every petition ID so identical inputs give identical IDs.
var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("cleanslate/petitions"))

// #region attorney
// Attorney is the filer named on generated petitions.
type Attorney struct {
	Organization      string          `json:"organization" yaml:"organization"`
	FullName          string          `json:"full_name" yaml:"full_name"`
	Address           crecord.Address `json:"address" yaml:"address"`
	OrganizationPhone string          `json:"organization_phone" yaml:"organization_phone"`
	BarID             string          `json:"bar_id" yaml:"bar_id"`
}

// #endregion attorney

// #region petition
// Petition is a proposed filing for a client covering a set of cases. Rules
// build these; rendering the legal document happens elsewhere.
type Petition struct {
	ID        uuid.UUID      `json:"id"`
	Kind      Kind           `json:"kind"`
	Type      Type           `json:"type,omitempty"`
	Procedure Procedure      `json:"procedure,omitempty"`
	Client    crecord.Person `json:"client"`
	Attorney  Attorney       `json:"attorney"`
	Cases     []crecord.Case `json:"cases"`
	Reason    string         `json:"reason,omitempty"`
}

// NewExpungement builds an expungement petition for the given cases.
func NewExpungement(client crecord.Person, attorney Attorney, typ Type, procedure Procedure, reason string, cases ...crecord.Case) Petition {
	return build(KindExpungement, typ, procedure, client, attorney, reason, cases)
}

// NewSealing builds a sealing petition for the given cases.
func NewSealing(client crecord.Person, attorney Attorney, reason string, cases ...crecord.Case) Petition {
	return build(KindSealing, "", "", client, attorney, reason, cases)
}

func build(kind Kind, typ Type, procedure Procedure, client crecord.Person, attorney Attorney, reason string, cases []crecord.Case) Petition {
	held := make([]crecord.Case, 0, len(cases))
	for _, c := range cases {
		held = append(held, c.Clone())
	}
	p := Petition{
		Kind:      kind,
		Type:      typ,
		Procedure: procedure,
		Client:    client,
		Attorney:  attorney,
		Cases:     held,
		Reason:    reason,
	}
	p.ID = NewID(p)
	return p
}

// NewID derives a stable ID from the petition's kind, type and the dockets and
// charge sequences it covers.
func NewID(p Petition) uuid.UUID {
	var b strings.Builder
	fmt.Fprintf(&b, "%s|%s|%s|%s", p.Kind, p.Type, p.Client.FullName(), p.Client.DateOfBirth)
	for _, c := range p.Cases {
		b.WriteString("|" + c.DocketNumber)
		for _, ch := range c.Charges {
			b.WriteString(":" + ch.Sequence)
		}
	}
	return uuid.NewSHA1(namespace, []byte(b.String()))
}

// Dockets lists the docket numbers the petition covers, in order.
func (p Petition) Dockets() []string {
	out := make([]string, 0, len(p.Cases))
	for _, c := range p.Cases {
		out = append(out, c.DocketNumber)
	}
	return out
}

// ChargeCount is the number of charges across the petition's cases.
func (p Petition) ChargeCount() int {
	n := 0
	for _, c := range p.Cases {
		n += len(c.Charges)
	}
	return n
}

func (p Petition) String() string {
	label := string(p.Kind)
	if p.Type != "" {
		label = string(p.Type)
	}
	return fmt.Sprintf("Petition(%s, Client: %s, Cases: %v)", label, p.Client.FullName(), p.Dockets())
}

// #endregion petition

// #region sql
// Petitions is a list stored as a JSON column.
type Petitions []Petition

// Value implements driver.Valuer for JSON columns
func (ps Petitions) Value() (driver.Value, error) {
	if ps == nil {
		return "[]", nil
	}
	b, err := json.Marshal(ps)
	if err != nil {
		return nil, fmt.Errorf("marshal petitions: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner for JSON columns
func (ps *Petitions) Scan(value any) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*ps = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("scan petitions: unsupported type %T", value)
	}
	return json.Unmarshal(raw, ps)
}

// #endregion sql
