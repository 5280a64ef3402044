package invoice

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/shopbot-service-go/internal/checkout"
	"github.com/andreasstove999/ecommerce-system/shopbot-service-go/internal/money"
)

// Render produces the customer-facing invoice text.
func Render(number string, issuedAt time.Time, order checkout.Order) string {
	var b strings.Builder
	b.WriteString("*FACTURA DE COMPRA*\n*Monasterio de la Trapa*\n\n")
	fmt.Fprintf(&b, "📝 *Nº Factura:* %s\n", number)
	fmt.Fprintf(&b, "📅 *Fecha:* %d/%d/%d %d:%02d\n\n",
		issuedAt.Day(), int(issuedAt.Month()), issuedAt.Year(), issuedAt.Hour(), issuedAt.Minute())

	b.WriteString("👤 *DATOS DEL CLIENTE:*\n")
	fmt.Fprintf(&b, "Nombre: %s\n", order.Customer.Name)
	fmt.Fprintf(&b, "Dirección: %s\n", order.Customer.Address)
	fmt.Fprintf(&b, "Teléfono: %s\n\n", order.Customer.Phone)

	b.WriteString("📋 *DETALLE DE COMPRA:*\n\n")
	subtotal := decimal.Zero
	for i, it := range order.Items {
		line := it.Subtotal()
		subtotal = subtotal.Add(line)
		fmt.Fprintf(&b, "%d. %s\n", i+1, it.Name)
		fmt.Fprintf(&b, "   Precio unit: %s\n", money.Format(it.Price))
		fmt.Fprintf(&b, "   Cantidad: %d\n", it.Quantity)
		fmt.Fprintf(&b, "   Subtotal: %s\n\n", money.Format(line))
	}

	// prices are VAT exempt
	vat := decimal.Zero
	b.WriteString("📊 *RESUMEN:*\n")
	fmt.Fprintf(&b, "Subtotal: %s\n", money.Format(subtotal))
	fmt.Fprintf(&b, "IVA (0%%): %s\n", money.Format(vat))
	fmt.Fprintf(&b, "*TOTAL: %s*\n\n", money.Format(subtotal.Add(vat)))

	b.WriteString("✅ *¡GRACIAS POR SU COMPRA!*\n" +
		"Su pedido ha sido registrado y será procesado a la brevedad.\n" +
		"Para consultas adicionales, comuníquese al:\n" +
		"📞 Teléfono: (XX) XXXX-XXXX\n\n" +
		"🙏 Que Dios bendiga su hogar.")
	return b.String()
}
