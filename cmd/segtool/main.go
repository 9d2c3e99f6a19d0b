// Command segtool inspects atlases and saves or exports segmentation
// projects without opening a window.
package main

import "atlas-segment/cmd/segtool/cmd"

func main() {
	cmd.Execute()
}
