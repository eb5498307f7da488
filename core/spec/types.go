package spec

// Spec is the desired state of a catalog instance.
type Spec struct {
	Languages         *[]Language         `json:"languages,omitempty" yaml:"languages,omitempty"`
	PriceVariants     *[]PriceVariant     `json:"priceVariants,omitempty" yaml:"priceVariants,omitempty"`
	VatTypes          *[]VatType          `json:"vatTypes,omitempty" yaml:"vatTypes,omitempty"`
	StockLocations    *[]StockLocation    `json:"stockLocations,omitempty" yaml:"stockLocations,omitempty"`
	SubscriptionPlans *[]SubscriptionPlan `json:"subscriptionPlans,omitempty" yaml:"subscriptionPlans,omitempty"`
	Shapes            *[]Shape            `json:"shapes,omitempty" yaml:"shapes,omitempty"`
	Topics            *[]Topic            `json:"topicMaps,omitempty" yaml:"topicMaps,omitempty"`
	Grids             *[]Grid             `json:"grids,omitempty" yaml:"grids,omitempty"`
	Items             *[]Item             `json:"items,omitempty" yaml:"items,omitempty"`
	Customers         *[]Customer         `json:"customers,omitempty" yaml:"customers,omitempty"`
	Orders            *[]Order            `json:"orders,omitempty" yaml:"orders,omitempty"`
}

type Language struct {
	Code      string `json:"code" yaml:"code"`
	Name      string `json:"name" yaml:"name"`
	IsDefault bool   `json:"isDefault,omitempty" yaml:"isDefault,omitempty"`
}

type PriceVariant struct {
	Identifier string `json:"identifier" yaml:"identifier"`
	Name       string `json:"name" yaml:"name"`
	Currency   string `json:"currency" yaml:"currency"`
}

// VatType is identified by its name.
type VatType struct {
	ID      string  `json:"id,omitempty" yaml:"id,omitempty"`
	Name    string  `json:"name" yaml:"name"`
	Percent float64 `json:"percent" yaml:"percent"`
}

type StockLocation struct {
	Identifier string `json:"identifier" yaml:"identifier"`
	Name       string `json:"name" yaml:"name"`
	Minimum    *int   `json:"minimum,omitempty" yaml:"minimum,omitempty"`
}

type SubscriptionPlan struct {
	Identifier       string            `json:"identifier" yaml:"identifier"`
	Name             string            `json:"name" yaml:"name"`
	MeteredVariables []MeteredVariable `json:"meteredVariables" yaml:"meteredVariables"`
	Periods          []PlanPeriod      `json:"periods" yaml:"periods"`
}

type MeteredVariable struct {
	Identifier string `json:"identifier" yaml:"identifier"`
	Name       string `json:"name" yaml:"name"`
	Unit       string `json:"unit" yaml:"unit"`
}

type PlanPeriod struct {
	Name      string        `json:"name" yaml:"name"`
	Initial   *PeriodLength `json:"initial,omitempty" yaml:"initial,omitempty"`
	Recurring *PeriodLength `json:"recurring,omitempty" yaml:"recurring,omitempty"`
}

type PeriodLength struct {
	Period int    `json:"period" yaml:"period"`
	Unit   string `json:"unit" yaml:"unit"`
}

// ShapeType is one of product, document or folder.
type ShapeType string

const (
	ShapeProduct  ShapeType = "product"
	ShapeDocument ShapeType = "document"
	ShapeFolder   ShapeType = "folder"
)

type Shape struct {
	Identifier string           `json:"identifier" yaml:"identifier"`
	Name       string           `json:"name" yaml:"name"`
	Type       ShapeType        `json:"type" yaml:"type"`
	Components []ShapeComponent `json:"components,omitempty" yaml:"components,omitempty"`
}

type ShapeComponent struct {
	ID     string         `json:"id" yaml:"id"`
	Name   string         `json:"name" yaml:"name"`
	Type   string         `json:"type" yaml:"type"`
	Config map[string]any `json:"config,omitempty" yaml:"config,omitempty"`
}

// Topic is a node of a topic map. Its identity is its path of names from the root.
type Topic struct {
	Name           string  `json:"name" yaml:"name"`
	PathIdentifier string  `json:"pathIdentifier,omitempty" yaml:"pathIdentifier,omitempty"`
	Children       []Topic `json:"children,omitempty" yaml:"children,omitempty"`
}

type Grid struct {
	Name string    `json:"name" yaml:"name"`
	Rows []GridRow `json:"rows,omitempty" yaml:"rows,omitempty"`
}

type GridRow struct {
	Columns []GridColumn `json:"columns" yaml:"columns"`
}

type GridColumn struct {
	Layout *GridLayout    `json:"layout,omitempty" yaml:"layout,omitempty"`
	Item   *ItemReference `json:"item,omitempty" yaml:"item,omitempty"`
}

type GridLayout struct {
	Rowspan int `json:"rowspan" yaml:"rowspan"`
	Colspan int `json:"colspan" yaml:"colspan"`
}

// ItemReference points at an item by external reference or catalog path.
type ItemReference struct {
	ExternalReference string `json:"externalReference,omitempty" yaml:"externalReference,omitempty"`
	CatalogPath       string `json:"catalogPath,omitempty" yaml:"catalogPath,omitempty"`
}

// Item is a node of the catalog tree.
type Item struct {
	Name              Translation      `json:"name" yaml:"name"`
	Shape             string           `json:"shape" yaml:"shape"`
	ExternalReference string           `json:"externalReference,omitempty" yaml:"externalReference,omitempty"`
	CatalogPath       string           `json:"catalogPath,omitempty" yaml:"catalogPath,omitempty"`
	VatType           string           `json:"vatType,omitempty" yaml:"vatType,omitempty"`
	Topics            []string         `json:"topics,omitempty" yaml:"topics,omitempty"`
	Components        map[string]any   `json:"components,omitempty" yaml:"components,omitempty"`
	Variants          []ProductVariant `json:"variants,omitempty" yaml:"variants,omitempty"`
	Published         *bool            `json:"published,omitempty" yaml:"published,omitempty"`
	Children          []Item           `json:"children,omitempty" yaml:"children,omitempty"`
}

type ProductVariant struct {
	Name      Translation        `json:"name" yaml:"name"`
	SKU       string             `json:"sku" yaml:"sku"`
	IsDefault bool               `json:"isDefault,omitempty" yaml:"isDefault,omitempty"`
	Price     map[string]float64 `json:"price,omitempty" yaml:"price,omitempty"`
	Stock     map[string]int     `json:"stock,omitempty" yaml:"stock,omitempty"`
}

type Customer struct {
	Identifier         string     `json:"identifier" yaml:"identifier"`
	FirstName          string     `json:"firstName,omitempty" yaml:"firstName,omitempty"`
	LastName           string     `json:"lastName,omitempty" yaml:"lastName,omitempty"`
	Email              string     `json:"email,omitempty" yaml:"email,omitempty"`
	ExternalReferences []KeyValue `json:"externalReferences,omitempty" yaml:"externalReferences,omitempty"`
}

type KeyValue struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// Order is identified by its external reference. Orders without one are always created.
type Order struct {
	ExternalReference  string     `json:"externalReference,omitempty" yaml:"externalReference,omitempty"`
	CustomerIdentifier string     `json:"customerIdentifier" yaml:"customerIdentifier"`
	Cart               []CartItem `json:"cart" yaml:"cart"`
	Total              *Price     `json:"total,omitempty" yaml:"total,omitempty"`
}

type CartItem struct {
	SKU      string `json:"sku" yaml:"sku"`
	Name     string `json:"name" yaml:"name"`
	Quantity int    `json:"quantity" yaml:"quantity"`
	Price    *Price `json:"price,omitempty" yaml:"price,omitempty"`
}

type Price struct {
	Gross    float64 `json:"gross" yaml:"gross"`
	Net      float64 `json:"net" yaml:"net"`
	Currency string  `json:"currency" yaml:"currency"`
}
