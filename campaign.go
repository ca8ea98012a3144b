package frameflow

import (
	"encoding/json"
	"fmt"
)

// CampaignKind distinguishes the two template families. It is a closed
// union: the compositor switches over it exhaustively and rejects unknown
// values instead of falling through.
type CampaignKind uint8

const (
	// KindPhotoFrame composites a participant photo under a frame overlay.
	KindPhotoFrame CampaignKind = iota

	// KindDocument draws text fields over a full-bleed background.
	KindDocument
)

// String returns the wire name of the kind.
func (k CampaignKind) String() string {
	switch k {
	case KindPhotoFrame:
		return "PHOTO_FRAME"
	case KindDocument:
		return "DOCUMENT"
	default:
		return fmt.Sprintf("CampaignKind(%d)", uint8(k))
	}
}

// ParseCampaignKind converts a wire name into a CampaignKind.
func ParseCampaignKind(s string) (CampaignKind, error) {
	switch s {
	case "PHOTO_FRAME":
		return KindPhotoFrame, nil
	case "DOCUMENT":
		return KindDocument, nil
	default:
		return 0, fmt.Errorf("frameflow: unknown campaign kind %q", s)
	}
}

// MarshalJSON implements json.Marshaler.
func (k CampaignKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (k *CampaignKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseCampaignKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// SubscriptionTier is the campaign creator's plan. The free tier forces a
// watermark onto every rendered frame; participants cannot disable it.
type SubscriptionTier uint8

const (
	// TierFree is the default plan; renders carry the watermark.
	TierFree SubscriptionTier = iota

	// TierPremium removes the watermark.
	TierPremium
)

// String returns the wire name of the tier.
func (t SubscriptionTier) String() string {
	switch t {
	case TierFree:
		return "FREE"
	case TierPremium:
		return "PREMIUM"
	default:
		return fmt.Sprintf("SubscriptionTier(%d)", uint8(t))
	}
}

// ParseSubscriptionTier converts a wire name into a SubscriptionTier.
func ParseSubscriptionTier(s string) (SubscriptionTier, error) {
	switch s {
	case "FREE":
		return TierFree, nil
	case "PREMIUM":
		return TierPremium, nil
	default:
		return 0, fmt.Errorf("frameflow: unknown subscription tier %q", s)
	}
}

// MarshalJSON implements json.Marshaler.
func (t SubscriptionTier) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *SubscriptionTier) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseSubscriptionTier(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Alignment is the horizontal anchoring of a text field around its
// position point.
type Alignment uint8

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

// String returns the wire name of the alignment.
func (a Alignment) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	default:
		return fmt.Sprintf("Alignment(%d)", uint8(a))
	}
}

// ParseAlignment converts a wire name into an Alignment.
func ParseAlignment(s string) (Alignment, error) {
	switch s {
	case "left":
		return AlignLeft, nil
	case "center":
		return AlignCenter, nil
	case "right":
		return AlignRight, nil
	default:
		return 0, fmt.Errorf("frameflow: unknown alignment %q", s)
	}
}

// MarshalJSON implements json.Marshaler.
func (a Alignment) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *Alignment) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseAlignment(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// TextField describes one dynamic text slot on a document-type template.
//
// X and Y are percentages (0-100) of the template's width and height, so a
// descriptor stays valid at any raster resolution. FontSize is in pixels at
// the template's native resolution. Participants never mutate a TextField;
// they supply session-scoped overrides instead (see render.Overrides).
type TextField struct {
	ID           string  `json:"id"`
	Label        string  `json:"label"`
	DefaultValue string  `json:"defaultValue"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`

	FontFamily string    `json:"fontFamily"`
	FontSize   float64   `json:"fontSize"`
	Color      string    `json:"color"`
	Align      Alignment `json:"align"`
}

// Campaign is the record the host application hands to the engine. The
// engine treats it as read-only; persistence and statistics belong to the
// host.
type Campaign struct {
	ID          string           `json:"id"`
	CreatorID   string           `json:"creatorId"`
	Kind        CampaignKind     `json:"type"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	TemplateURL string           `json:"frameUrl"`
	Tier        SubscriptionTier `json:"creatorTier"`

	// Fields is the persisted descriptor list for document campaigns.
	// Declaration order is stacking order: later fields draw on top.
	Fields []TextField `json:"textFieldsConfig,omitempty"`
}

// Field returns the descriptor with the given id, or nil.
func (c *Campaign) Field(id string) *TextField {
	for i := range c.Fields {
		if c.Fields[i].ID == id {
			return &c.Fields[i]
		}
	}
	return nil
}
