package debug

import "github.com/valerio/go-chroma/chroma/cpu"

type DisasmLine struct {
	Address     uint16
	Instruction string
	IsCurrent   bool
}

// backwardBytes is how far before PC decoding starts, so the listing shows
// some context above the current instruction.
const backwardBytes = 30

// CreateDisassembly decodes the snapshot into at most maxLines lines,
// centred on pc when possible.
func CreateDisassembly(snapshot *MemorySnapshot, pc uint16, maxLines int) []DisasmLine {
	if snapshot == nil || maxLines <= 0 {
		return nil
	}

	if !snapshot.Contains(pc) {
		lines := decode(snapshot, snapshot.StartAddr, pc, maxLines-1)
		return append(lines, DisasmLine{
			Address:     pc,
			Instruction: "[PC outside snapshot range]",
			IsCurrent:   true,
		})
	}

	start := snapshot.StartAddr
	if int(pc)-backwardBytes > int(start) {
		start = pc - backwardBytes
	}
	all := decode(snapshot, start, pc, len(snapshot.Bytes))

	// decoding from an arbitrary byte may straddle PC; centre on the
	// closest instruction then
	center := 0
	closest := -1
	for i, line := range all {
		dist := int(line.Address) - int(pc)
		if dist < 0 {
			dist = -dist
		}
		if closest < 0 || dist < closest {
			center, closest = i, dist
		}
	}

	from := max(center-maxLines/2, 0)
	to := min(from+maxLines, len(all))
	from = max(to-maxLines, 0)
	return all[from:to]
}

func decode(snapshot *MemorySnapshot, start, pc uint16, limit int) []DisasmLine {
	var lines []DisasmLine
	for address := start; snapshot.Contains(address) && len(lines) < limit; {
		name, length := cpu.Disassemble(snapshot.Read, address)
		lines = append(lines, DisasmLine{
			Address:     address,
			Instruction: name,
			IsCurrent:   address == pc,
		})
		next := address + uint16(length)
		if next < address {
			break
		}
		address = next
	}
	return lines
}
