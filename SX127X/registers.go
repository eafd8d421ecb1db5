package SX127X

// Register addresses (LoRa mode register map of the SX1276/77/78/79).
const (
	RegFifo              = 0x00
	RegOpMode            = 0x01
	RegFrfMsb            = 0x06
	RegFrfMid            = 0x07
	RegFrfLsb            = 0x08
	RegPaConfig          = 0x09
	RegPaRamp            = 0x0A
	RegOcp               = 0x0B
	RegLna               = 0x0C
	RegFifoAddrPtr       = 0x0D
	RegFifoTxBaseAddr    = 0x0E
	RegFifoRxBaseAddr    = 0x0F
	RegFifoRxCurrentAddr = 0x10
	RegIrqFlagsMask      = 0x11
	RegIrqFlags          = 0x12
	RegRxNbBytes         = 0x13
	RegPktSnrValue       = 0x19
	RegPktRssiValue      = 0x1A
	RegRssiValue         = 0x1B
	RegModemConfig1      = 0x1D
	RegModemConfig2      = 0x1E
	RegSymbTimeoutLsb    = 0x1F
	RegPreambleMsb       = 0x20
	RegPreambleLsb       = 0x21
	RegPayloadLength     = 0x22
	RegModemConfig3      = 0x26
	RegFreqErrorMsb      = 0x28
	RegFreqErrorMid      = 0x29
	RegFreqErrorLsb      = 0x2A
	RegDetectionOptimize = 0x31
	RegInvertIQ          = 0x33
	RegDetectionThresh   = 0x37
	RegSyncWord          = 0x39
	RegInvertIQ2         = 0x3B
	RegDioMapping1       = 0x40
	RegDioMapping2       = 0x41
	RegVersion           = 0x42
	RegPaDac             = 0x4D
)

// OpMode bitfield values. ModeLongRange is or'ed into every write.
const (
	ModeSleep        = 0x00
	ModeStandby      = 0x01
	ModeTx           = 0x03
	ModeRxContinuous = 0x05
	ModeRxSingle     = 0x06
	ModeLongRange    = 0x80
)

// IRQ flag bits of RegIrqFlags.
const (
	IrqRxTimeout       = 0x80
	IrqRxDone          = 0x40
	IrqPayloadCrcError = 0x20
	IrqValidHeader     = 0x10
	IrqTxDone          = 0x08
	IrqCadDone         = 0x04
	IrqCadDetected     = 0x01
)

// DIO0 mappings in the upper two bits of RegDioMapping1.
const (
	Dio0RxDone = 0x00
	Dio0TxDone = 0x40
)

const (
	// ChipVersion is the value of RegVersion for the whole family.
	ChipVersion = 0x12

	PaBoost = 0x80

	LnaBoostHF = 0x03

	// ModemConfig3AgcAuto enables the LNA gain set by the internal AGC loop.
	ModemConfig3AgcAuto = 0x04

	FifoTxBase = 0x00
	FifoRxBase = 0x00

	// FifoSize is the size of the chip's packet buffer.
	FifoSize = 256

	// MaxPayloadLength is bounded by the one-byte payload length register.
	MaxPayloadLength = 255

	spiWrite = 0x80
)

// FStep is the frequency synthesizer step in Hz: 32 MHz / 2^19.
const FStep = 61.03515625

// IrqFlags is a snapshot of RegIrqFlags.
type IrqFlags byte

func (f IrqFlags) TxDone() bool { return f&IrqTxDone != 0 }

func (f IrqFlags) RxDone() bool { return f&IrqRxDone != 0 }

func (f IrqFlags) CrcError() bool { return f&IrqPayloadCrcError != 0 }

func (f IrqFlags) RxTimeout() bool { return f&IrqRxTimeout != 0 }
