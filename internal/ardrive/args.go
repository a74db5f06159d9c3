package ardrive

import (
	"errors"
	"fmt"
)

// Op identifies an ardrive CLI operation.
type Op int

// Supported operations.
const (
	OpListAllDrives Op = iota + 1
	OpListDrive
	OpListDriveFiles
)

func (o Op) String() string {
	switch o {
	case OpListAllDrives:
		return "list-all-drives"
	case OpListDrive:
		return "list-drive"
	case OpListDriveFiles:
		return "list-drive-files"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// Invocation is one call to the ardrive CLI.
type Invocation struct {
	Op      Op
	DriveID string // required for OpListDrive and OpListDriveFiles
}

func (inv Invocation) validate() error {
	switch inv.Op {
	case OpListAllDrives:
		return nil
	case OpListDrive, OpListDriveFiles:
		if inv.DriveID == "" {
			return fmt.Errorf("ardrive: %s requires a drive id (pass -d/--drive-id)", inv.Op)
		}

		return nil
	default:
		return errors.New("ardrive: unknown operation " + inv.Op.String())
	}
}

// args builds the argv (without the executable) for inv. walletPath is the
// temporary wallet file; jsonOutput adds --json where the CLI supports it.
func (inv Invocation) args(walletPath string, jsonOutput bool) []string {
	switch inv.Op {
	case OpListAllDrives:
		args := []string{"list-all-drives", "--wallet-file", walletPath}
		if jsonOutput {
			args = append(args, "--json")
		}

		return args
	case OpListDrive:
		return []string{"list-drive", "-d", inv.DriveID, "--wallet-file", walletPath}
	case OpListDriveFiles:
		return []string{"list-drive", "-d", inv.DriveID, "--all", "--wallet-file", walletPath}
	default:
		return nil
	}
}
