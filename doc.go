/*
Package texpatch packs independently sized images into fixed size square texture pages
and binds the packed regions to the sprites and backgrounds of a data store.
Images already known by the store are overwritten in place, so patching a single
frame does not require repacking the existing pages.

The package provides a command line interface, supporting various flags for the packing options.
To check the supported commands type:

	$ texpatch --help

In case you wish to integrate the API in a self constructed environment here is a simple example:

	package main

	import (
		"log"

		"github.com/esimov/texpatch"
		"github.com/esimov/texpatch/store"
	)

	func main() {
		data, err := store.Load("base")
		if err != nil {
			log.Fatal(err)
		}

		im := texpatch.NewImporter()
		if _, err := im.Import(data, "Graphics"); err != nil {
			log.Fatalf("Error importing the graphics: %v", err)
		}

		if err := data.Save("patched", store.PNG); err != nil {
			log.Fatal(err)
		}
	}
*/
package texpatch
