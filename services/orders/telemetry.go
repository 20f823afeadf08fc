package orders

import (
	"yqzx-crawler/lib/restyutil"
)

var restyInstrumentOutput restyutil.InstrumentOutput

// SetRestyInstrumentOutput enables request/response dumps for the
// webhook client, mainly for debugging failed uploads.
func SetRestyInstrumentOutput(output restyutil.InstrumentOutput) {
	restyInstrumentOutput = output
}
