package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/booomerangs/relay-api/internal/svg"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "Использование: raster2svg <url_изображения>")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	doc, err := svg.Convert(ctx, os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка при создании SVG: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(doc)
}
