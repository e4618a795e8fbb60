package domain

import "time"

// JewelryKind — вид украшения. Вместо иерархии типов используется
// тегированный вариант: общий набор полей плюс payload конкретного вида.
type JewelryKind string

const (
	// JewelryKindRing — кольцо.
	JewelryKindRing JewelryKind = "ring"
	// JewelryKindNecklace — колье.
	JewelryKindNecklace JewelryKind = "necklace"
	// JewelryKindWatch — часы.
	JewelryKindWatch JewelryKind = "watch"
)

// Valid проверяет, что вид относится к поддерживаемым значениям.
func (k JewelryKind) Valid() bool {
	switch k {
	case JewelryKindRing, JewelryKindNecklace, JewelryKindWatch:
		return true
	default:
		return false
	}
}

// RingDetails — payload для колец.
type RingDetails struct {
	// Size — размер кольца в российской системе (диаметр в мм).
	Size float64 `json:"size"`
}

// NecklaceDetails — payload для колье.
type NecklaceDetails struct {
	// LengthMM — длина цепочки в миллиметрах.
	LengthMM int32 `json:"length_mm"`
}

// WatchDetails — payload для часов.
type WatchDetails struct {
	// Mechanism — тип механизма (quartz, mechanical).
	Mechanism string `json:"mechanism"`
}

// Jewelry описывает позицию каталога с ценой и остатком на складе.
// Остаток мутируется только через условный AdjustStock хранилища,
// цена — напрямую операцией каталога.
type Jewelry struct {
	ID       string
	Name     string
	Kind     JewelryKind
	Material string
	// PriceMinor — текущая цена за единицу в минимальных денежных единицах.
	PriceMinor int64
	// Stock — остаток на складе, всегда >= 0.
	Stock int32

	// Payload конкретного вида; заполняется ровно тот, что соответствует Kind.
	Ring     *RingDetails
	Necklace *NecklaceDetails
	Watch    *WatchDetails

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate проверяет корректность полей украшения и возвращает ошибки, если они есть.
func (j *Jewelry) Validate() []error {
	var errs []error

	if !j.Kind.Valid() {
		errs = append(errs, ErrJewelryKindInvalid)
	}
	if j.PriceMinor <= 0 {
		errs = append(errs, ErrPriceInvalid)
	}
	if j.Stock < 0 {
		errs = append(errs, ErrStockNegative)
	}
	if !j.detailsMatchKind() {
		errs = append(errs, ErrJewelryDetailsMismatch)
	}

	return errs
}

// detailsMatchKind проверяет, что заполнен только payload своего вида.
func (j *Jewelry) detailsMatchKind() bool {
	switch j.Kind {
	case JewelryKindRing:
		return j.Necklace == nil && j.Watch == nil
	case JewelryKindNecklace:
		return j.Ring == nil && j.Watch == nil
	case JewelryKindWatch:
		return j.Ring == nil && j.Necklace == nil
	default:
		return j.Ring == nil && j.Necklace == nil && j.Watch == nil
	}
}
