package modmap

import "fmt"

const s707 = 0.7071067811865476

// bpskPoints through qam16Points keep the Karnaugh-map symbol
// orderings of the classic lookup tables, indexed by the binary value
// of the bit pattern.
var bpskPoints = []complex128{1, -1}

var qpskPoints = []complex128{1 + 1i, -1 + 1i, -1 - 1i, 1 - 1i}

var psk8Points = []complex128{
	1, complex(s707, s707), 1i, complex(-s707, s707),
	-1, complex(-s707, -s707), -1i, complex(s707, -s707),
}

var qam16Points = []complex128{
	-3 - 3i, -3 - 1i, -3 + 3i, -3 + 1i,
	-1 - 3i, -1 - 1i, -1 + 3i, -1 + 1i,
	3 - 3i, 3 - 1i, 3 + 3i, 3 + 1i,
	1 - 3i, 1 - 1i, 1 + 3i, 1 + 1i,
}

// crossQAM enumerates a (side x side) grid of odd levels in row-major
// order (top-left first), skipping the corner blocks whose coordinates
// both exceed the cut level. cut = 0 yields the full square grid.
func crossQAM(side int, cut float64) []complex128 {
	pts := make([]complex128, 0, side*side)
	for row := 0; row < side; row++ {
		im := float64(side - 1 - 2*row)
		for col := 0; col < side; col++ {
			re := float64(2*col - side + 1)
			if cut > 0 && abs(re) > cut && abs(im) > cut {
				continue
			}
			pts = append(pts, complex(re, im))
		}
	}
	return pts
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

func rawPoints(s Scheme) ([]complex128, error) {
	switch s {
	case BPSK:
		return bpskPoints, nil
	case QPSK:
		return qpskPoints, nil
	case PSK8:
		return psk8Points, nil
	case QAM16:
		return qam16Points, nil
	case QAM32:
		// 6x6 grid minus the four corner points.
		return crossQAM(6, 3), nil
	case QAM64:
		return crossQAM(8, 0), nil
	case QAM128:
		// 12x12 grid minus 2x2 corner blocks.
		return crossQAM(12, 7), nil
	case QAM256:
		return crossQAM(16, 0), nil
	case APSK16:
		pts := ring(nil, 4, 1)
		return ring(pts, 12, 2.53), nil
	case APSK32:
		pts := ring(nil, 4, 1)
		pts = ring(pts, 12, 2.53)
		return ring(pts, 16, 4.30), nil
	case APSK64:
		pts := ring(nil, 4, 1)
		pts = ring(pts, 12, 2.73)
		pts = ring(pts, 20, 4.52)
		return ring(pts, 28, 6.31), nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedModulation, s)
	}
}
