package events

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/tbourn/chegaja-engine/internal/domain"
	"github.com/tbourn/chegaja-engine/internal/geo"
)

// GeoPoint is a document-store geopoint. Coordinates are kept untyped so a
// non-numeric value can be told apart from a missing one.
type GeoPoint struct {
	Latitude  any `json:"latitude"`
	Longitude any `json:"longitude"`
}

// GeoField is the location block of order and provider documents.
type GeoField struct {
	Geohash  string    `json:"geohash"`
	Geopoint *GeoPoint `json:"geopoint"`
}

// point returns the coordinates when both are JSON numbers within range.
func (g *GeoField) point() (geo.Point, bool) {
	if g == nil || g.Geopoint == nil {
		return geo.Point{}, false
	}
	lat, ok1 := g.Geopoint.Latitude.(float64)
	lng, ok2 := g.Geopoint.Longitude.(float64)
	if !ok1 || !ok2 {
		return geo.Point{}, false
	}
	p := geo.Point{Lat: lat, Lng: lng}
	return p, p.Valid()
}

// OrderDoc is an order ("pedido") document snapshot.
type OrderDoc struct {
	ClienteID   string    `json:"clienteId"`
	ClientID    string    `json:"clientId"`
	PrestadorID string    `json:"prestadorId"`
	Status      string    `json:"status"`
	Titulo      string    `json:"titulo"`
	ServicoID   string    `json:"servicoId"`
	Geo         *GeoField `json:"geo"`

	Preco                  any    `json:"preco"`
	PrecoPropostoPrestador any    `json:"precoPropostoPrestador"`
	PrecoFinal             any    `json:"precoFinal"`
	Currency               string `json:"currency"`
}

// Order converts the snapshot to the order model. The client id is the
// first non-empty of clienteId and clientId; coordinates are kept only when
// numeric; prices accept numbers and numeric strings.
func (d OrderDoc) Order(id string) domain.Order {
	o := domain.Order{
		ID:            id,
		ClientID:      strings.TrimSpace(firstNonEmpty(d.ClienteID, d.ClientID)),
		ProviderID:    strings.TrimSpace(d.PrestadorID),
		Status:        d.Status,
		Title:         d.Titulo,
		ServiceID:     strings.TrimSpace(d.ServicoID),
		Price:         number(d.Preco),
		ProposedPrice: number(d.PrecoPropostoPrestador),
		FinalPrice:    number(d.PrecoFinal),
		Currency:      strings.ToLower(strings.TrimSpace(d.Currency)),
	}
	if p, ok := d.Geo.point(); ok {
		o.Latitude, o.Longitude = &p.Lat, &p.Lng
		o.Geohash = geo.Encode(p)
	}
	return o
}

// ProviderDoc is a provider ("prestador") document snapshot.
type ProviderDoc struct {
	IsOnline bool      `json:"isOnline"`
	Servicos []string  `json:"servicos"`
	Geo      *GeoField `json:"geo"`
	RadiusKm any       `json:"radiusKm"`
}

// Provider converts the snapshot to the provider model.
func (d ProviderDoc) Provider(id string) domain.Provider {
	p := domain.Provider{ID: id, Online: d.IsOnline}
	if r := number(d.RadiusKm); r != nil {
		p.RadiusKm = *r
	}
	if pt, ok := d.Geo.point(); ok {
		p.Latitude, p.Longitude = &pt.Lat, &pt.Lng
		p.Geohash = geo.Encode(pt)
	}
	seen := map[string]bool{}
	for _, s := range d.Servicos {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		p.Services = append(p.Services, domain.ProviderService{ProviderID: id, ServiceID: s})
	}
	return p
}

// OrderParams are the path parameters of an order document event.
type OrderParams struct {
	PedidoID string `json:"pedidoId"`
}

// MessageParams are the path parameters of a chat message event.
type MessageParams struct {
	PedidoID  string `json:"pedidoId"`
	MessageID string `json:"messageId"`
}

// ProviderParams are the path parameters of a provider document event.
type ProviderParams struct {
	PrestadorID string `json:"prestadorId"`
}

// OrderCreated is delivered when an order document is created.
type OrderCreated struct {
	Params OrderParams `json:"params"`
	After  OrderDoc    `json:"after"`
}

// OrderUpdated is delivered when an order document changes.
type OrderUpdated struct {
	Params OrderParams `json:"params"`
	Before OrderDoc    `json:"before"`
	After  OrderDoc    `json:"after"`
}

// MessageCreated is delivered when a chat message document is created.
type MessageCreated struct {
	Params  MessageParams      `json:"params"`
	Message domain.ChatMessage `json:"message"`
}

// ProviderWritten is delivered when a provider document is created or
// changed.
type ProviderWritten struct {
	Params ProviderParams `json:"params"`
	After  ProviderDoc    `json:"after"`
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// number reads a finite JSON number or numeric string. Anything else is
// nil.
func number(v any) *float64 {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case json.Number:
		x, err := t.Float64()
		if err != nil {
			return nil
		}
		f = x
	case string:
		x, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return nil
		}
		f = x
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
