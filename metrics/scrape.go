package metrics

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.jonnrb.io/natmon/log"
)

const (
	PROC_NET_DEV = "/proc/net/dev"
)

var procNetDev = PROC_NET_DEV

func (m *Metrics) doMetricsScrape(uplinkName string) {
	stats, err := getNetDevStats()
	if err != nil {
		log.Errorf("error scraping network stats: %v", err)
		return
	}

	ifaceStats, ok := stats[uplinkName]
	if !ok {
		log.Errorf("iface %q not found in kernel network stats table", uplinkName)
		return
	}

	receiveBytes, ok := ifaceStats["receive_bytes"]
	if !ok {
		log.Error("could not find receive_bytes stat")
		return
	}
	m.receiveBytes.Set(float64(receiveBytes))

	transmitBytes, ok := ifaceStats["transmit_bytes"]
	if !ok {
		log.Error("could not find transmit_bytes stat")
		return
	}
	m.transmitBytes.Set(float64(transmitBytes))
}

func getNetDevStats() (map[string]map[string]int64, error) {
	file, err := os.Open(procNetDev)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return parseNetDev(file)
}

func parseNetDev(r io.Reader) (map[string]map[string]int64, error) {
	scanner := bufio.NewScanner(r)

	// scan two lines (the weird looking headers)
	if !scanner.Scan() || !scanner.Scan() {
		return nil, fmt.Errorf("bad %v", PROC_NET_DEV)
	}

	headerParts := strings.Split(scanner.Text(), "|")
	if len(headerParts) != 3 {
		return nil, fmt.Errorf("bad header line in %v: %q", PROC_NET_DEV, scanner.Text())
	}
	rHeader, tHeader := strings.Fields(headerParts[1]), strings.Fields(headerParts[2])

	keys := make([]string, len(rHeader)+len(tHeader))
	for i, r := range rHeader {
		keys[i] = "receive_" + r
	}
	for i, t := range tHeader {
		keys[i+len(rHeader)] = "transmit_" + t
	}

	stats := make(map[string]map[string]int64)
	for scanner.Scan() {
		a := strings.Split(scanner.Text(), ":")
		if len(a) != 2 {
			return nil, fmt.Errorf("bad stats line: %q", scanner.Text())
		}
		iface, fields := strings.TrimSpace(a[0]), strings.Fields(a[1])
		if len(fields) > len(keys) {
			return nil, fmt.Errorf("too many fields for %q: %d > %d", iface, len(fields), len(keys))
		}
		ifaceStats := make(map[string]int64)
		for i, field := range fields {
			if n, err := strconv.ParseInt(field, 10, 64); err != nil {
				return nil, fmt.Errorf("error parsing number: %v", field)
			} else {
				ifaceStats[keys[i]] = n
			}
		}
		stats[iface] = ifaceStats
	}
	return stats, scanner.Err()
}
