package fdresolve

import (
	"fmt"
	"net"
	"strconv"

	"github.com/prometheus/procfs"
)

type SocketInfo struct {
	Protocol    string `json:"protocol"`
	Description string `json:"description"`
	State       string `json:"state"`
}

// tcp_states.h
var tcpStates = map[uint64]string{
	1:  "ESTABLISHED",
	2:  "SYN_SENT",
	3:  "SYN_RECV",
	4:  "FIN_WAIT1",
	5:  "FIN_WAIT2",
	6:  "TIME_WAIT",
	7:  "CLOSE",
	8:  "CLOSE_WAIT",
	9:  "LAST_ACK",
	10: "LISTEN",
	11: "CLOSING",
}

// socket looks the inode up in the cached tables and reloads them
// once on a miss (new sockets show up between calls).
func (r *Resolver) socket(inode uint64) (SocketInfo, bool) {
	if info, ok := r.sockets.Get(inode); ok {
		return info, true
	}

	for ino, info := range readSocketInfo(r.procPidPath(), r.logger.Debugf) {
		r.sockets.Add(ino, info)
	}

	return r.sockets.Get(inode)
}

func endpoint(ip net.IP, port uint64) string {
	return net.JoinHostPort(ip.String(), strconv.FormatUint(port, 10))
}

// readSocketInfo reads /proc/<pid>/net/{tcp,tcp6,udp,udp6,unix}
// and returns the entries keyed by inode.
func readSocketInfo(procPidPath string, debugf func(string, ...interface{})) map[uint64]SocketInfo {
	si := make(map[uint64]SocketInfo)

	fs, err := procfs.NewFS(procPidPath)
	if err != nil {
		debugf("failed to read %s - %v", procPidPath, err)
		return si
	}

	for protocol, parser := range map[string]func() (procfs.NetTCP, error){
		"tcp":  fs.NetTCP,
		"tcp6": fs.NetTCP6,
	} {
		addrs, err := parser()
		if err != nil {
			debugf("failed to read %s socket info in %s - %v", protocol, procPidPath, err)
			continue
		}

		for _, entry := range addrs {
			si[entry.Inode] = SocketInfo{
				Protocol:    protocol,
				Description: fmt.Sprintf("%s->%s", endpoint(entry.LocalAddr, entry.LocalPort), endpoint(entry.RemAddr, entry.RemPort)),
				State:       tcpState(entry.St),
			}
		}
	}

	for protocol, parser := range map[string]func() (procfs.NetUDP, error){
		"udp":  fs.NetUDP,
		"udp6": fs.NetUDP6,
	} {
		addrs, err := parser()
		if err != nil {
			debugf("failed to read %s socket info in %s - %v", protocol, procPidPath, err)
			continue
		}

		for _, entry := range addrs {
			si[entry.Inode] = SocketInfo{
				Protocol:    protocol,
				Description: fmt.Sprintf("%s->%s", endpoint(entry.LocalAddr, entry.LocalPort), endpoint(entry.RemAddr, entry.RemPort)),
				State:       strconv.FormatUint(entry.St, 10),
			}
		}
	}

	unix, err := fs.NetUNIX()
	if err != nil {
		debugf("failed to read unix socket info in %s - %v", procPidPath, err)
		return si
	}

	for _, entry := range unix.Rows {
		path := entry.Path
		if path == "" {
			path = "(unnamed)"
		}

		si[entry.Inode] = SocketInfo{
			Protocol:    "unix",
			Description: fmt.Sprintf("%s:%s", entry.Type, path),
			State:       entry.State.String(),
		}
	}

	return si
}

func tcpState(st uint64) string {
	if name, ok := tcpStates[st]; ok {
		return name
	}

	return strconv.FormatUint(st, 10)
}
