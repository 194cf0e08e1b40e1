package inventory

import (
	"strings"

	"github.com/shopspring/decimal"
)

// unitFamily agrupa una unidad base con su submúltiplo (factor 10^3).
type unitFamily struct {
	base, sub string
}

var (
	mass   = unitFamily{base: "kg", sub: "g"}
	volume = unitFamily{base: "L", sub: "ml"}
)

// canonicalUnit normaliza la escritura de la unidad ("KG", "lt", "ML" ...).
func canonicalUnit(u string) string {
	switch strings.ToLower(strings.TrimSpace(u)) {
	case "kg", "kilo", "kilos":
		return mass.base
	case "g", "gr", "gramos":
		return mass.sub
	case "l", "lt", "litro", "litros":
		return volume.base
	case "ml", "cc":
		return volume.sub
	}
	return strings.TrimSpace(u)
}

// shift devuelve el exponente decimal para pasar de from a to: +3 base->sub, -3 sub->base,
// 0 si son iguales o no están emparejadas.
func shift(from, to string) int32 {
	from, to = canonicalUnit(from), canonicalUnit(to)
	for _, f := range []unitFamily{mass, volume} {
		switch {
		case from == f.base && to == f.sub:
			return 3
		case from == f.sub && to == f.base:
			return -3
		}
	}
	return 0
}

// ConvertUnits convierte stock y costo unitario entre unidades emparejadas
// (kg<->g, L<->ml). kg->g multiplica el stock por 1000 y divide el costo por 1000.
//
// Unidades iguales o no relacionadas (ej. kg -> unidades) devuelven los valores sin cambios.
// La conversión es exacta (desplazamiento decimal), por lo que ida y vuelta devuelve
// los valores originales.
func ConvertUnits(stock, cost decimal.Decimal, from, to string) (decimal.Decimal, decimal.Decimal) {
	exp := shift(from, to)
	if exp == 0 {
		return stock, cost
	}
	return stock.Shift(exp), cost.Shift(-exp)
}

// ConvertQuantity convierte solo una cantidad (ej. 500 g de receta -> 0.5 kg de stock).
func ConvertQuantity(q decimal.Decimal, from, to string) decimal.Decimal {
	return q.Shift(shift(from, to))
}

// Convertible informa si from y to son la misma unidad o un par convertible.
func Convertible(from, to string) bool {
	return canonicalUnit(from) == canonicalUnit(to) || shift(from, to) != 0
}
