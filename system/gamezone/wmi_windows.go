package gamezone

import (
	"context"
	"runtime"
	"sync"

	"github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	namespace     = `root\WMI`
	gameZoneClass = "LENOVO_GAMEZONE_DATA"
	fanClass      = "LENOVO_FAN_METHOD"
)

// WMI talks to the GameZone firmware through WMI method calls
type WMI struct {
	mu     sync.Mutex // one method call at a time
	logger zerolog.Logger
}

var _ Interface = &WMI{}

// NewWMI returns the GameZone interface of this machine. It fails if the
// Lenovo GameZone driver is not installed.
func NewWMI(logger zerolog.Logger) (*WMI, error) {
	w := &WMI{
		logger: logger,
	}
	if _, err := w.call(gameZoneClass, "IsSupportSmartFan", nil, "Data"); err != nil {
		return nil, errors.Wrap(err, "gamezone: smart fan interface unavailable, is the Lenovo driver installed?")
	}
	return w, nil
}

// call executes method on the first instance of class. in holds the input
// parameters; the value of the out parameter is returned when out is set.
func (w *WMI) call(class, method string, in map[string]interface{}, out string) (interface{}, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	// COM initialization is per OS thread
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := ole.CoInitializeEx(0, ole.COINIT_MULTITHREADED); err != nil {
		// S_FALSE: already initialized on this thread
		if oleErr, ok := err.(*ole.OleError); !ok || oleErr.Code() != 1 {
			return nil, errors.Wrap(err, "cannot initialize COM")
		}
	}
	defer ole.CoUninitialize()

	unknown, err := oleutil.CreateObject("WbemScripting.SWbemLocator")
	if err != nil {
		return nil, errors.Wrap(err, "cannot create SWbemLocator")
	}
	defer unknown.Release()

	locator, err := unknown.QueryInterface(ole.IID_IDispatch)
	if err != nil {
		return nil, errors.Wrap(err, "cannot query SWbemLocator")
	}
	defer locator.Release()

	serviceRaw, err := oleutil.CallMethod(locator, "ConnectServer", nil, namespace)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot connect to %s", namespace)
	}
	service := serviceRaw.ToIDispatch()
	defer service.Release()

	resultRaw, err := oleutil.CallMethod(service, "ExecQuery", "SELECT * FROM "+class)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot query %s", class)
	}
	result := resultRaw.ToIDispatch()
	defer result.Release()

	countVar, err := oleutil.GetProperty(result, "Count")
	if err != nil {
		return nil, err
	}
	defer countVar.Clear()
	if countVar.Val == 0 {
		return nil, errors.Errorf("no instance of %s", class)
	}

	itemRaw, err := oleutil.CallMethod(result, "ItemIndex", 0)
	if err != nil {
		return nil, err
	}
	item := itemRaw.ToIDispatch()
	defer item.Release()

	args := []interface{}{method}
	if len(in) > 0 {
		params, err := spawnInParameters(item, method)
		if err != nil {
			return nil, err
		}
		defer params.Release()

		for name, value := range in {
			set, err := oleutil.PutProperty(params, name, value)
			if err != nil {
				return nil, errors.Wrapf(err, "cannot set %s.%s", method, name)
			}
			set.Clear()
		}
		args = append(args, params)
	}

	w.logger.Debug().Str("class", class).Str("method", method).Msg("wmi method call")

	outRaw, err := oleutil.CallMethod(item, "ExecMethod_", args...)
	if err != nil {
		return nil, errors.Wrapf(err, "%s.%s failed", class, method)
	}
	defer outRaw.Clear()
	outParams := outRaw.ToIDispatch()

	if out == "" {
		return nil, nil
	}
	v, err := oleutil.GetProperty(outParams, out)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read %s.%s", method, out)
	}
	defer v.Clear()
	return v.Value(), nil
}

func spawnInParameters(item *ole.IDispatch, method string) (*ole.IDispatch, error) {
	methodsRaw, err := oleutil.GetProperty(item, "Methods_")
	if err != nil {
		return nil, err
	}
	methods := methodsRaw.ToIDispatch()
	defer methods.Release()

	defRaw, err := oleutil.CallMethod(methods, "Item", method)
	if err != nil {
		return nil, errors.Wrapf(err, "unknown method %s", method)
	}
	def := defRaw.ToIDispatch()
	defer def.Release()

	inRaw, err := oleutil.GetProperty(def, "InParameters")
	if err != nil {
		return nil, err
	}
	inDef := inRaw.ToIDispatch()
	defer inDef.Release()

	paramsRaw, err := oleutil.CallMethod(inDef, "SpawnInstance_")
	if err != nil {
		return nil, err
	}
	return paramsRaw.ToIDispatch(), nil
}

func toInt(v interface{}) (int, error) {
	switch n := v.(type) {
	case int32:
		return int(n), nil
	case uint32:
		return int(n), nil
	case int64:
		return int(n), nil
	case uint8:
		return int(n), nil
	case int:
		return n, nil
	case bool:
		if n {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, errors.Errorf("unexpected wmi value %v (%T)", v, v)
	}
}

func (w *WMI) callInt(class, method string) (int, error) {
	v, err := w.call(class, method, nil, "Data")
	if err != nil {
		return 0, err
	}
	return toInt(v)
}

func (w *WMI) ReadRawMode(ctx context.Context) (int, error) {
	return w.callInt(gameZoneClass, "GetSmartFanMode")
}

func (w *WMI) WriteRawMode(ctx context.Context, raw int) error {
	_, err := w.call(gameZoneClass, "SetSmartFanMode", map[string]interface{}{"Data": int32(raw)}, "")
	return err
}

func (w *WMI) ProbeCPUOverclockSupport(ctx context.Context) (bool, error) {
	v, err := w.callInt(gameZoneClass, "IsSupportCpuOC")
	return v > 0, err
}

func (w *WMI) ProbeGPUOverclockSupport(ctx context.Context) (bool, error) {
	v, err := w.callInt(gameZoneClass, "IsSupportGpuOC")
	return v > 0, err
}

func (w *WMI) SetCPUOverclock(ctx context.Context, enabled bool) error {
	status := int32(0)
	if enabled {
		status = 1
	}
	_, err := w.call(gameZoneClass, "SetCpuOCStatus", map[string]interface{}{"Data": status}, "")
	return err
}

func (w *WMI) SetFanTable(ctx context.Context, table []byte) error {
	_, err := w.call(fanClass, "Fan_Set_Table", map[string]interface{}{"FanTable": table}, "")
	return err
}

func (w *WMI) Close() error {
	return nil
}
