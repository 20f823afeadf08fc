package orders

// The portal's workflow backend keys custom form fields by opaque hex
// codes. These were observed on live payloads and are stable per form
// template; a new field on the portal side means a new code here.

// common flow fields, human-readable on the wire
const (
	fieldSerial     = "sn"
	fieldDate       = "date"
	fieldDepartment = "departmentname"
	fieldStatus     = "status_cn"
	fieldFlowStep   = "flowstep"
	fieldFlowUser   = "flowuser"
)

// sales form (销售单) header fields
const (
	fieldSalesDocumentNumber = "1863a43f386aac30"
	fieldSalesDate           = "18633dad9bae18b1"
	fieldCustomer            = "186733833bcb1d93"
	fieldCustomerType        = "18633ef3f59dad1d" // nested inside the customer object
	fieldLatestArrivalTime   = "1863b457aef61689"
	fieldSalesCategory       = "18695bb09265efba"
)

// sales form line-item array and its per-item fields
const (
	fieldSalesItems        = "18633f513e89c426"
	fieldSalesItemStyle    = "18633f63e5a9cc80"
	fieldSalesItemColor    = "18633f6d95e3f31b"
	fieldSalesItemSize     = "18633f6f3a8a9f37"
	fieldSalesItemQuantity = "18633f70a579634a"
)

// production order (生产订单) header fields
const (
	fieldSalesType        = "18695c1f1dd38ad2"
	fieldMatchingSupplier = "18630555812bbb91"
	fieldNotes            = "186e039af74dabfd"
)

// production order line-item array and its per-item fields
const (
	fieldOrderItems        = "186270de9f66ee7f"
	fieldOrderItemStyle    = "186270e2cedcd674"
	fieldOrderItemColor    = "186270e5d684af51"
	fieldOrderItemSize     = "186270e67e5745c3"
	fieldOrderItemQuantity = "186270e9a0ed28fb"
)

// required-materials array and its per-item fields
const (
	fieldMaterials               = "186270f21079ca34"
	fieldMaterialName            = "186270ffdcda0671"
	fieldMaterialCode            = "1878cfb5936ad86a"
	fieldMaterialColor           = "186271094f55ba9e"
	fieldMaterialSize            = "186356a08f6d4654"
	fieldMaterialRequiredQty     = "1862711aa5d951f3"
	fieldMaterialLossRatio       = "1869700df1f0506d"
	fieldMaterialUnitUsage       = "1864ee4957ee6750"
	fieldMaterialPlannedQty      = "1862712798d2c93f"
	fieldMaterialUnit            = "186271406b77bc90"
	fieldMaterialUnitPrice       = "186b0984ddccb90b"
	fieldMaterialAmount          = "186b09887da0f0d0"
	fieldMaterialOccupiedQty     = "1862efec2f91d150"
	fieldMaterialRemarks         = "186a646a90fd271c"
)
