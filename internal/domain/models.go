package domain

import "time"

// ISOTimestamp is the wire format for created/modified/audit timestamps,
// millisecond precision in UTC.
const ISOTimestamp = "2006-01-02T15:04:05.000Z"

// ISODate is the stored format for filter dates.
const ISODate = "2006-01-02"

// NowISO returns the current time in the ISOTimestamp layout.
func NowISO() string {
	return time.Now().UTC().Format(ISOTimestamp)
}

// Asset is a tracked water-safety outlet (tap, cooler, shower) and its
// filter-maintenance state.
type Asset struct {
	ID                  string `json:"id" dynamodbav:"id"`
	AssetBarcode        string `json:"assetBarcode" dynamodbav:"assetBarcode"`
	AssetType           string `json:"assetType" dynamodbav:"assetType"`
	Status              string `json:"status" dynamodbav:"status"`
	PrimaryIdentifier   string `json:"primaryIdentifier" dynamodbav:"primaryIdentifier"`
	SecondaryIdentifier string `json:"secondaryIdentifier" dynamodbav:"secondaryIdentifier"`
	Wing                string `json:"wing" dynamodbav:"wing"`
	WingInShort         string `json:"wingInShort" dynamodbav:"wingInShort"`
	Room                string `json:"room" dynamodbav:"room"`
	Floor               string `json:"floor" dynamodbav:"floor"`
	FloorInWords        string `json:"floorInWords" dynamodbav:"floorInWords"`
	RoomNo              string `json:"roomNo" dynamodbav:"roomNo"`
	RoomName            string `json:"roomName" dynamodbav:"roomName"`
	FilterNeeded        bool   `json:"filterNeeded" dynamodbav:"filterNeeded"`
	FiltersOn           bool   `json:"filtersOn" dynamodbav:"filtersOn"`
	FilterExpiryDate    string `json:"filterExpiryDate" dynamodbav:"filterExpiryDate"`
	FilterInstalledOn   string `json:"filterInstalledOn" dynamodbav:"filterInstalledOn"`
	FilterType          string `json:"filterType" dynamodbav:"filterType"`
	NeedFlushing        bool   `json:"needFlushing" dynamodbav:"needFlushing"`
	Notes               string `json:"notes" dynamodbav:"notes"`
	AugmentedCare       bool   `json:"augmentedCare" dynamodbav:"augmentedCare"`
	LowUsageAsset       bool   `json:"lowUsageAsset" dynamodbav:"lowUsageAsset"`
	Created             string `json:"created" dynamodbav:"created"`
	CreatedBy           string `json:"createdBy" dynamodbav:"createdBy"`
	Modified            string `json:"modified" dynamodbav:"modified"`
	ModifiedBy          string `json:"modifiedBy" dynamodbav:"modifiedBy"`
}

// AssetUpdate is a partial update. Nil fields are left untouched when
// applied; id, created and createdBy can never be overwritten through it.
type AssetUpdate struct {
	AssetBarcode        *string `json:"assetBarcode,omitempty" dynamodbav:"assetBarcode,omitempty"`
	AssetType           *string `json:"assetType,omitempty" dynamodbav:"assetType,omitempty"`
	Status              *string `json:"status,omitempty" dynamodbav:"status,omitempty"`
	PrimaryIdentifier   *string `json:"primaryIdentifier,omitempty" dynamodbav:"primaryIdentifier,omitempty"`
	SecondaryIdentifier *string `json:"secondaryIdentifier,omitempty" dynamodbav:"secondaryIdentifier,omitempty"`
	Wing                *string `json:"wing,omitempty" dynamodbav:"wing,omitempty"`
	WingInShort         *string `json:"wingInShort,omitempty" dynamodbav:"wingInShort,omitempty"`
	Room                *string `json:"room,omitempty" dynamodbav:"room,omitempty"`
	Floor               *string `json:"floor,omitempty" dynamodbav:"floor,omitempty"`
	FloorInWords        *string `json:"floorInWords,omitempty" dynamodbav:"floorInWords,omitempty"`
	RoomNo              *string `json:"roomNo,omitempty" dynamodbav:"roomNo,omitempty"`
	RoomName            *string `json:"roomName,omitempty" dynamodbav:"roomName,omitempty"`
	FilterNeeded        *bool   `json:"filterNeeded,omitempty" dynamodbav:"filterNeeded,omitempty"`
	FiltersOn           *bool   `json:"filtersOn,omitempty" dynamodbav:"filtersOn,omitempty"`
	FilterExpiryDate    *string `json:"filterExpiryDate,omitempty" dynamodbav:"filterExpiryDate,omitempty"`
	FilterInstalledOn   *string `json:"filterInstalledOn,omitempty" dynamodbav:"filterInstalledOn,omitempty"`
	FilterType          *string `json:"filterType,omitempty" dynamodbav:"filterType,omitempty"`
	NeedFlushing        *bool   `json:"needFlushing,omitempty" dynamodbav:"needFlushing,omitempty"`
	Notes               *string `json:"notes,omitempty" dynamodbav:"notes,omitempty"`
	AugmentedCare       *bool   `json:"augmentedCare,omitempty" dynamodbav:"augmentedCare,omitempty"`
	LowUsageAsset       *bool   `json:"lowUsageAsset,omitempty" dynamodbav:"lowUsageAsset,omitempty"`
	ModifiedBy          *string `json:"modifiedBy,omitempty" dynamodbav:"modifiedBy,omitempty"`
}

// Apply merges the non-nil fields of the update onto the asset. Identity and
// creation provenance are deliberately not part of the update type.
func (u *AssetUpdate) Apply(a *Asset) {
	setStr := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setBool := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}

	setStr(&a.AssetBarcode, u.AssetBarcode)
	setStr(&a.AssetType, u.AssetType)
	setStr(&a.Status, u.Status)
	setStr(&a.PrimaryIdentifier, u.PrimaryIdentifier)
	setStr(&a.SecondaryIdentifier, u.SecondaryIdentifier)
	setStr(&a.Wing, u.Wing)
	setStr(&a.WingInShort, u.WingInShort)
	setStr(&a.Room, u.Room)
	setStr(&a.Floor, u.Floor)
	setStr(&a.FloorInWords, u.FloorInWords)
	setStr(&a.RoomNo, u.RoomNo)
	setStr(&a.RoomName, u.RoomName)
	setBool(&a.FilterNeeded, u.FilterNeeded)
	setBool(&a.FiltersOn, u.FiltersOn)
	setStr(&a.FilterExpiryDate, u.FilterExpiryDate)
	setStr(&a.FilterInstalledOn, u.FilterInstalledOn)
	setStr(&a.FilterType, u.FilterType)
	setBool(&a.NeedFlushing, u.NeedFlushing)
	setStr(&a.Notes, u.Notes)
	setBool(&a.AugmentedCare, u.AugmentedCare)
	setBool(&a.LowUsageAsset, u.LowUsageAsset)
	setStr(&a.ModifiedBy, u.ModifiedBy)
}

// Audit actions.
const (
	ActionCreate = "CREATE"
	ActionUpdate = "UPDATE"
	ActionDelete = "DELETE"
)

// AuditLogEntry is an immutable record of one asset mutation. Details holds
// the full asset on create and the partial update on update; it is absent on
// delete. AssetID is a reference, not ownership: the asset may be deleted
// later while the entry remains.
type AuditLogEntry struct {
	AssetID   string `json:"assetId" dynamodbav:"assetId"`
	Timestamp string `json:"timestamp" dynamodbav:"timestamp"`
	User      string `json:"user" dynamodbav:"user"`
	Action    string `json:"action" dynamodbav:"action"`
	Details   any    `json:"details,omitempty" dynamodbav:"details,omitempty"`
}

// AssetType is a user-defined category label. No update operation exists;
// types are created and deleted whole.
type AssetType struct {
	TypeID    string `json:"typeId" dynamodbav:"typeId"`
	Label     string `json:"label" dynamodbav:"label"`
	CreatedAt string `json:"createdAt" dynamodbav:"createdAt"`
	CreatedBy string `json:"createdBy" dynamodbav:"createdBy"`
}
