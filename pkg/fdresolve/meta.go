package fdresolve

import (
	"os"
	"os/user"
	"strconv"

	"github.com/dustin/go-humanize"

	"github.com/slimtoolkit/fstrace/pkg/util/fsutil"
)

func (r *Resolver) fileMeta(info os.FileInfo) *FileMeta {
	meta := &FileMeta{
		Perm:     fsutil.PermString(info.Mode()),
		Size:     info.Size(),
		ModTime:  info.ModTime(),
		HumanSz:  humanize.IBytes(uint64(info.Size())),
		HumanAge: humanize.Time(info.ModTime()),
	}

	if st := fsutil.FileSysStat(info); st.Ok {
		meta.Owner = r.ownerName(st.Uid)
		meta.Group = r.groupName(st.Gid)
	}

	return meta
}

func (r *Resolver) ownerName(uid uint32) string {
	if name, ok := r.owners.Get(uid); ok {
		return name
	}

	id := strconv.FormatUint(uint64(uid), 10)
	name := id
	if u, err := user.LookupId(id); err == nil {
		name = u.Username
	}

	r.owners.Add(uid, name)
	return name
}

func (r *Resolver) groupName(gid uint32) string {
	if name, ok := r.groups.Get(gid); ok {
		return name
	}

	id := strconv.FormatUint(uint64(gid), 10)
	name := id
	if g, err := user.LookupGroupId(id); err == nil {
		name = g.Name
	}

	r.groups.Add(gid, name)
	return name
}
