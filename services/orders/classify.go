package orders

// Kind partitions every normalized order into exactly one class.
type Kind int

const (
	KindSales Kind = iota
	KindProduction
)

// Classify assigns an order to a class by its form type, deciding
// ambiguous types by whether the payload yielded both production detail
// blocks. Every order lands in exactly one class.
func Classify(formType, orderDetails, materialDetails string) Kind {
	switch formType {
	case "生产订单":
		return KindProduction
	case "销售单":
		return KindSales
	}
	if orderDetails != "" && materialDetails != "" {
		return KindProduction
	}
	return KindSales
}
