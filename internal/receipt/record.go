package receipt

// Record is the canonical result of a structured receipt extraction.
// The JSON keys are the wire names the vision model is instructed to use;
// they match the Turkish accounting schema the downstream system expects.
//
// A Record is always fully populated: missing or malformed model output
// degrades to the zero value of each field, never to an error.
type Record struct {
	DocumentNumber string     `json:"belge_numarasi"`
	TotalAmount    float64    `json:"harcama_tutari"`
	Currency       string     `json:"para_birimi"`
	VATAmount      float64    `json:"kdv_tutari"`
	LineItems      []LineItem `json:"urunler"`
}

// LineItem is a single purchased item on a receipt.
type LineItem struct {
	Name      string  `json:"ad"`
	Quantity  float64 `json:"adet"`
	UnitPrice float64 `json:"birim_fiyat"`
}
