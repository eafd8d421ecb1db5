package SX127X

import (
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Waziup/single_chan_radio/lora"
)

// Send transmits one packet of at most MaxPayloadLength bytes and waits for
// TxDone. On ErrTxTimeout the FIFO and mode state of the chip are undefined;
// the caller should re-initialize the radio or retry.
func (r *Radio) Send(data []byte) error {
	if r.closed {
		return ErrClosed
	}
	if len(data) > MaxPayloadLength {
		return errors.Wrapf(ErrInvalidArgument, "payload of %d bytes exceeds %d", len(data), MaxPayloadLength)
	}

	if err := r.setMode(Standby); err != nil {
		return err
	}
	if err := r.bus.WriteRegister(RegFifoAddrPtr, FifoTxBase); err != nil {
		return err
	}
	if err := r.bus.WriteBurst(RegFifo, data); err != nil {
		return err
	}
	if err := r.bus.WriteRegister(RegPayloadLength, byte(len(data))); err != nil {
		return err
	}
	if err := r.bus.WriteRegister(RegDioMapping1, Dio0TxDone); err != nil {
		return err
	}
	if err := r.setMode(Tx); err != nil {
		return err
	}

	start := time.Now()
	if !r.lines.WaitForCompletion(r.txTimeout) {
		r.log.Debug("tx timeout", zap.Duration("timeout", r.txTimeout))
		return ErrTxTimeout
	}
	flags, err := r.clearIrq()
	if err != nil {
		return err
	}
	r.log.Debug("tx done",
		zap.Int("size", len(data)),
		zap.Duration("airtime", time.Since(start)),
		zap.Uint8("irq", uint8(flags)))

	// the chip falls back to standby by itself after TxDone
	return r.setMode(Standby)
}

// Receive waits up to the receive timeout for one packet.
//
// If no packet arrived (timeout, or a completion without RxDone), or the
// packet failed its CRC, Receive returns a nil packet and a nil error. These
// are normal outcomes the caller retries at its own pace. Unless the radio is in continuous receive, Receive switches it to
// single receive. The mode is left as is afterwards.
func (r *Radio) Receive() (*lora.RxPacket, error) {
	if r.closed {
		return nil, ErrClosed
	}

	if err := r.bus.WriteRegister(RegDioMapping1, Dio0RxDone); err != nil {
		return nil, err
	}
	if r.mode != RxContinuous {
		if err := r.setMode(RxSingle); err != nil {
			return nil, err
		}
	}

	if !r.lines.WaitForCompletion(r.rxTimeout) {
		r.log.Debug("rx timeout", zap.Duration("timeout", r.rxTimeout))
		return nil, nil
	}
	flags, err := r.clearIrq()
	if err != nil {
		return nil, err
	}
	if !flags.RxDone() {
		r.log.Debug("completion without rx done", zap.Uint8("irq", uint8(flags)))
		return nil, nil
	}
	if flags.CrcError() {
		r.log.Debug("rx crc error, packet dropped", zap.Uint8("irq", uint8(flags)))
		return nil, nil
	}

	addr, err := r.bus.ReadRegister(RegFifoRxCurrentAddr)
	if err != nil {
		return nil, err
	}
	n, err := r.bus.ReadRegister(RegRxNbBytes)
	if err != nil {
		return nil, err
	}
	if err := r.bus.WriteRegister(RegFifoAddrPtr, addr); err != nil {
		return nil, err
	}
	data, err := r.bus.ReadBurst(RegFifo, int(n))
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	pkt := &lora.RxPacket{
		Time:     &now,
		Freq:     r.freq,
		StatCRC:  1,
		Datarate: r.sf,
		LoRaBW:   r.bw,
		LoRaCR:   r.cr,
		Data:     data,
	}
	if err := r.readLinkQuality(pkt); err != nil {
		return nil, err
	}
	r.log.Debug("rx done",
		zap.Int("size", len(data)),
		zap.Float32("rssi", pkt.RSSI),
		zap.Float32("snr", pkt.LoRaSNR))
	return pkt, nil
}

// readLinkQuality fills RSSI and SNR of the last packet.
func (r *Radio) readLinkQuality(pkt *lora.RxPacket) error {
	snr, err := r.bus.ReadRegister(RegPktSnrValue)
	if err != nil {
		return err
	}
	rssi, err := r.bus.ReadRegister(RegPktRssiValue)
	if err != nil {
		return err
	}
	pkt.RSSI, pkt.LoRaSNR = linkQuality(rssi, snr, r.freq)
	return nil
}

// linkQuality converts RegPktRssiValue and RegPktSnrValue to dBm and dB.
func linkQuality(rssi, snr byte, freqMHz float64) (rssiDBm, snrDB float32) {
	snrDB = float32(int8(snr)) / 4
	offset := float32(-157)
	if freqMHz < 525 {
		offset = -164
	}
	rssiDBm = offset + float32(rssi)
	if snrDB < 0 {
		rssiDBm += snrDB
	}
	return rssiDBm, snrDB
}
