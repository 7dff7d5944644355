// Package fdresolve maps the file descriptors of a traced process to the
// files, sockets and pipes they refer to.
package fdresolve

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	log "github.com/sirupsen/logrus"
)

type Kind string

const (
	KindFile    Kind = "REG"
	KindDir     Kind = "DIR"
	KindDevice  Kind = "DEV"
	KindSocket  Kind = "SOCKET"
	KindPipe    Kind = "PIPE"
	KindAnon    Kind = "ANON"
	KindUnknown Kind = "UNKNOWN"
)

const (
	socketLinkPrefix = "socket:["
	pipeLinkPrefix   = "pipe:["
	anonLinkPrefix   = "anon_inode:"
	deletedSuffix    = " (deleted)"
)

const (
	defaultSocketCacheSize = 1024
	defaultOwnerCacheSize  = 64
)

type FileMeta struct {
	Owner    string    `json:"owner"`
	Group    string    `json:"group"`
	Perm     string    `json:"perm"`
	Size     int64     `json:"size"`
	ModTime  time.Time `json:"mtime"`
	HumanSz  string    `json:"-"`
	HumanAge string    `json:"-"`
}

// Target is what a descriptor refers to at resolve time.
type Target struct {
	FD      int         `json:"fd"`
	Path    string      `json:"path"`
	Kind    Kind        `json:"kind"`
	Deleted bool        `json:"deleted,omitempty"`
	Socket  *SocketInfo `json:"socket,omitempty"`
	Meta    *FileMeta   `json:"meta,omitempty"`
}

func (t Target) String() string {
	if t.Socket != nil {
		return fmt.Sprintf("%s socket %s", t.Socket.Protocol, t.Socket.Description)
	}

	return t.Path
}

type Resolver struct {
	procRoot string
	pid      int
	withMeta bool

	sockets *lru.Cache[uint64, SocketInfo]
	owners  *lru.Cache[uint32, string]
	groups  *lru.Cache[uint32, string]

	logger *log.Entry
}

type Option func(*Resolver)

func WithMetadata(enabled bool) Option {
	return func(r *Resolver) {
		r.withMeta = enabled
	}
}

// WithProcRoot overrides the procfs mount point (/proc by default).
func WithProcRoot(root string) Option {
	return func(r *Resolver) {
		r.procRoot = root
	}
}

func NewResolver(pid int, opts ...Option) (*Resolver, error) {
	sockets, err := lru.New[uint64, SocketInfo](defaultSocketCacheSize)
	if err != nil {
		return nil, err
	}

	owners, err := lru.New[uint32, string](defaultOwnerCacheSize)
	if err != nil {
		return nil, err
	}

	groups, err := lru.New[uint32, string](defaultOwnerCacheSize)
	if err != nil {
		return nil, err
	}

	r := &Resolver{
		procRoot: procPath(),
		pid:      pid,
		sockets:  sockets,
		owners:   owners,
		groups:   groups,
		logger: log.WithFields(log.Fields{
			"app": "fstrace",
			"com": "fdresolve",
			"pid": pid,
		}),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r, nil
}

func (r *Resolver) procPidPath() string {
	return r.procRoot + "/" + strconv.Itoa(r.pid)
}

func (r *Resolver) fdLinkPath(fd int) string {
	return r.procPidPath() + "/fd/" + strconv.Itoa(fd)
}

// Resolve never fails: descriptors that can't be inspected come back
// as "fd=<n>" with KindUnknown.
func (r *Resolver) Resolve(fd int) Target {
	target := Target{
		FD:   fd,
		Path: fmt.Sprintf("fd=%d", fd),
		Kind: KindUnknown,
	}

	if fd < 0 {
		return target
	}

	linkPath := r.fdLinkPath(fd)
	name, err := os.Readlink(linkPath)
	if err != nil {
		r.logger.WithField("op", "fdresolve.Resolver.Resolve").Tracef("readlink(%s) error - %v", linkPath, err)
		return target
	}

	target.Path = name
	switch {
	case strings.HasPrefix(name, socketLinkPrefix):
		target.Kind = KindSocket
		if inode, ok := linkInode(name, socketLinkPrefix); ok {
			if info, found := r.socket(inode); found {
				target.Socket = &info
			}
		}
	case strings.HasPrefix(name, pipeLinkPrefix):
		target.Kind = KindPipe
	case strings.HasPrefix(name, anonLinkPrefix):
		target.Kind = KindAnon
	default:
		if strings.HasSuffix(name, deletedSuffix) {
			target.Deleted = true
			target.Path = strings.TrimSuffix(name, deletedSuffix)
		}

		//stat through the fd link: works for deleted and renamed files too
		info, err := os.Stat(linkPath)
		if err != nil {
			return target
		}

		target.Kind = fileKind(info.Mode())
		if r.withMeta && target.Kind == KindFile {
			target.Meta = r.fileMeta(info)
		}
	}

	return target
}

func fileKind(mode os.FileMode) Kind {
	switch {
	case mode.IsRegular():
		return KindFile
	case mode.IsDir():
		return KindDir
	case mode&os.ModeSocket != 0:
		return KindSocket
	case mode&os.ModeNamedPipe != 0:
		return KindPipe
	case mode&os.ModeDevice != 0:
		return KindDevice
	default:
		return KindUnknown
	}
}

// linkInode parses "<prefix>12345]".
func linkInode(link, prefix string) (uint64, bool) {
	raw := strings.TrimSuffix(strings.TrimPrefix(link, prefix), "]")
	inode, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false
	}

	return inode, true
}

func procPath() string {
	if procPath, ok := os.LookupEnv("HOST_PROC"); ok {
		return procPath
	}

	return "/proc"
}
