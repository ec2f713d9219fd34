package models

import "time"

const ChemicalTable = "lab_chemicals"
const SDSDocumentTable = "lab_sds_documents"

type Chemical struct {
	ID           string  `gorm:"type:uuid;primaryKey" json:"id"`
	Code         string  `gorm:"size:120;uniqueIndex;not null" json:"code"`
	Name         string  `gorm:"size:255;not null;index" json:"name"`
	CASNumber    string  `gorm:"size:64;index" json:"casNumber,omitempty"`
	Unit         string  `gorm:"size:32;not null" json:"unit"`
	CurrentStock float64 `gorm:"type:numeric(12,3);not null;default:0;check:current_stock >= 0" json:"currentStock"`
	MinStock     float64 `gorm:"type:numeric(12,3);not null;default:0" json:"minStock"`
	Location     string  `gorm:"size:255" json:"location,omitempty"`
	HazardClass  string  `gorm:"size:120" json:"hazardClass,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Chemical) TableName() string { return ChemicalTable }

// SDSDocument is the stored metadata of one Safety Data Sheet file; the file
// itself lives in object storage under ObjectKey.
type SDSDocument struct {
	ID          string `gorm:"type:uuid;primaryKey" json:"id"`
	ChemicalID  string `gorm:"type:uuid;index;not null" json:"chemicalId"`
	FileName    string `gorm:"size:255;not null" json:"fileName"`
	ObjectKey   string `gorm:"size:512;uniqueIndex;not null" json:"-"`
	ContentType string `gorm:"size:120" json:"contentType"`
	SizeBytes   int64  `gorm:"not null;default:0" json:"sizeBytes"`
	UploadedBy  string `gorm:"type:uuid" json:"uploadedBy"`
	URL         string `gorm:"size:1024" json:"url"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (SDSDocument) TableName() string { return SDSDocumentTable }
